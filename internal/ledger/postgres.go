package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
)

// scoreRow is the gorm model behind the Postgres ledger.
type scoreRow struct {
	Seq         int64     `gorm:"column:seq;primaryKey;autoIncrement"`
	ID          string    `gorm:"column:id;type:varchar(36);uniqueIndex;not null"`
	Nickname    string    `gorm:"column:nickname;type:varchar(100);not null"`
	GameType    string    `gorm:"column:game_type;type:varchar(50);index:idx_scores_board,priority:1;not null"`
	Score       int       `gorm:"column:score;index:idx_scores_board,priority:2,sort:desc;not null"`
	MaxPossible int       `gorm:"column:max_possible;default:0"`
	Rounds      int       `gorm:"column:rounds;default:0"`
	Difficulty  string    `gorm:"column:difficulty;type:varchar(10)"`
	SessionID   string    `gorm:"column:session_id;type:varchar(36)"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
}

func (scoreRow) TableName() string { return "scores" }

func (r scoreRow) record() Record {
	return Record{
		ID:  r.ID,
		Seq: r.Seq,
		Entry: Entry{
			Nickname:    r.Nickname,
			GameType:    r.GameType,
			Score:       r.Score,
			MaxPossible: r.MaxPossible,
			Rounds:      r.Rounds,
			Difficulty:  game.Difficulty(r.Difficulty),
			SessionID:   r.SessionID,
		},
		CreatedAt: r.CreatedAt.UTC(),
	}
}

// Postgres is a gorm-backed ledger for shared deployments.
type Postgres struct {
	db  *gorm.DB
	now func() time.Time
}

// OpenPostgres connects to dsn and migrates the scores table.
func OpenPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewGorm(db)
}

// NewGorm wraps an existing gorm connection and migrates the scores table.
func NewGorm(db *gorm.DB) (*Postgres, error) {
	if err := db.AutoMigrate(&scoreRow{}); err != nil {
		return nil, fmt.Errorf("migrate scores: %w", err)
	}
	return &Postgres{db: db, now: time.Now}, nil
}

func (p *Postgres) Save(ctx context.Context, e Entry) (Record, error) {
	e, err := Validate(e)
	if err != nil {
		return Record{}, err
	}
	row := scoreRow{
		ID:          newID(),
		Nickname:    e.Nickname,
		GameType:    e.GameType,
		Score:       e.Score,
		MaxPossible: e.MaxPossible,
		Rounds:      e.Rounds,
		Difficulty:  string(e.Difficulty),
		SessionID:   e.SessionID,
		CreatedAt:   p.now().UTC(),
	}
	if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
		return Record{}, fmt.Errorf("insert score: %w", err)
	}
	return row.record(), nil
}

func (p *Postgres) Top(ctx context.Context, gameType string, limit int) ([]Record, error) {
	var rows []scoreRow
	err := p.db.WithContext(ctx).
		Where("game_type = ?", strings.TrimSpace(gameType)).
		Order("score DESC").Order("seq ASC").
		Limit(ClampLimit(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}

func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
