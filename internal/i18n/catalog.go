package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var english = map[string]string{
	"welcome":            "Welcome to Legendary Lines! What's your nickname?",
	"nickname.blank":     "Every legend needs a name. What should we call you?",
	"nickname.confirmed": "Great to have you, %s!",
	"category.pick":      "Pick a category: Song, Movie, Famous Person, Fictional Character, Book, Poet or Quote.",
	"category.unknown":   "%q isn't a category. Try Song, Movie, Famous Person, Fictional Character, Book, Poet or Quote.",
	"phrase.presented":   "Here's your %s line: \"%s\"",
	"phrase.failed":      "The host dropped the cue cards. Pick a category to try again.",
	"answer.blank":       "Give it a shot, type your answer!",
	"feedback":           "%s",
	"judge.failed":       "We couldn't check that answer. Please send it again.",
	"bonus.offer":        "Want to guess the %s of this %s for %d points? (Yes/No)",
	"bonus.unclear":      "Just a yes or a no will do!",
	"bonus.accepted":     "Here we go! What's the %s of this %s?",
	"bonus.declined":     "Alright! You keep your %d points for this round. Let's move on!",
	"round.perfect":      "INCREDIBLE! You just dominated this %s with all %d points!",
	"round.forfeited":    "That round is over. %d points slipped away, but you've got this next one!",
	"round.wait":         "Hang tight, the next round is on its way.",
	"round.next":         "Ready, %s? Round %d! Pick a category.",
	"game.perfect":       "PERFECT GAME! A flawless %d points. You're a legend!",
	"game.over":          "Game over! You scored %d out of a possible %d points.",
	"score.save_failed":  "Your score couldn't be saved to the leaderboard.",

	"prompt.nickname": "Enter your nickname",
	"prompt.category": "Choose a category",
	"prompt.source":   "Where is this line from?",
	"prompt.year":     "Enter the year",
	"prompt.creator":  "Enter the creator",
	"prompt.artist":   "Enter the artist",
	"prompt.director": "Enter the director",
	"prompt.author":   "Enter the author",
	"prompt.bonus":    "Yes or No?",
	"prompt.wait":     "Please wait...",
	"prompt.none":     "Thanks for playing!",

	"category.SONG":                "song",
	"category.MOVIE":               "movie",
	"category.FAMOUS_PERSON":       "famous person",
	"category.FICTIONAL_CHARACTER": "fictional character",
	"category.BOOK":                "book",
	"category.POET":                "poet",
	"category.QUOTE":               "quote",

	"stage.source":  "source",
	"stage.year":    "year",
	"stage.creator": "creator",
	"role.artist":   "artist",
	"role.director": "director",
	"role.author":   "author",
}

var spanish = map[string]string{
	"welcome":            "¡Bienvenido a Legendary Lines! ¿Cuál es tu apodo?",
	"nickname.blank":     "Toda leyenda necesita un nombre. ¿Cómo te llamamos?",
	"nickname.confirmed": "¡Qué bueno tenerte aquí, %s!",
	"category.pick":      "Elige una categoría: Canción, Película, Persona Famosa, Personaje Ficticio, Libro, Poeta o Cita.",
	"category.unknown":   "%q no es una categoría. Prueba con Song, Movie, Famous Person, Fictional Character, Book, Poet o Quote.",
	"phrase.presented":   "Tu frase de %s: \"%s\"",
	"phrase.failed":      "El presentador perdió las tarjetas. Elige una categoría para intentarlo de nuevo.",
	"answer.blank":       "¡Anímate y escribe tu respuesta!",
	"feedback":           "%s",
	"judge.failed":       "No pudimos revisar esa respuesta. Envíala de nuevo, por favor.",
	"bonus.offer":        "¿Quieres adivinar el %s de esta %s por %d puntos? (Sí/No)",
	"bonus.unclear":      "¡Basta con un sí o un no!",
	"bonus.accepted":     "¡Vamos! ¿Cuál es el %s de esta %s?",
	"bonus.declined":     "¡Muy bien! Te quedas con tus %d puntos de esta ronda. ¡Sigamos!",
	"round.perfect":      "¡INCREÍBLE! ¡Dominaste esta %s con los %d puntos!",
	"round.forfeited":    "Se acabó la ronda. Se escaparon %d puntos, ¡pero la próxima es tuya!",
	"round.wait":         "Espera un momento, la siguiente ronda ya viene.",
	"round.next":         "¿Listo, %s? ¡Ronda %d! Elige una categoría.",
	"game.perfect":       "¡JUEGO PERFECTO! %d puntos impecables. ¡Eres una leyenda!",
	"game.over":          "¡Fin del juego! Obtuviste %d de %d puntos posibles.",
	"score.save_failed":  "No se pudo guardar tu puntuación en la tabla de líderes.",

	"prompt.nickname": "Escribe tu apodo",
	"prompt.category": "Elige una categoría",
	"prompt.source":   "¿De dónde es esta frase?",
	"prompt.year":     "Escribe el año",
	"prompt.creator":  "Escribe el creador",
	"prompt.artist":   "Escribe el artista",
	"prompt.director": "Escribe el director",
	"prompt.author":   "Escribe el autor",
	"prompt.bonus":    "¿Sí o No?",
	"prompt.wait":     "Espera, por favor...",
	"prompt.none":     "¡Gracias por jugar!",

	"category.SONG":                "canción",
	"category.MOVIE":               "película",
	"category.FAMOUS_PERSON":       "persona famosa",
	"category.FICTIONAL_CHARACTER": "personaje ficticio",
	"category.BOOK":                "libro",
	"category.POET":                "poeta",
	"category.QUOTE":               "cita",

	"stage.source":  "origen",
	"stage.year":    "año",
	"stage.creator": "creador",
	"role.artist":   "artista",
	"role.director": "director",
	"role.author":   "autor",
}

var catalogs = map[language.Tag]map[string]string{
	language.English: english,
	language.Spanish: spanish,
}

func init() {
	for tag, msgs := range catalogs {
		for key, value := range msgs {
			if err := message.SetString(tag, key, value); err != nil {
				panic(err)
			}
		}
	}
}
