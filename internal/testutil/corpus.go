package testutil

import (
	"testing"
)

// Sample texts for a small, clearly separated reference corpus.
const (
	GermanText = `Der schnelle braune Fuchs springt über den faulen Hund. Es war einmal ein
König, der hatte drei Töchter, die waren alle schön. Die Würde des Menschen ist unantastbar.
Heute ist das Wetter schön und die Kinder spielen mit ihren Freunden im Garten hinter dem
Haus. Am Abend gehen wir zusammen in die Stadt und essen in einem kleinen Restaurant, weil
die Küche dort besonders gut ist und die Bedienung immer freundlich bleibt.`

	EnglishText = `The quick brown fox jumps over the lazy dog. It was the best of times,
it was the worst of times, it was the age of wisdom, it was the age of foolishness. There
is nothing either good or bad, but thinking makes it so. The weather is nice today and the
children are playing in the garden with their friends. In the evening we will walk into
the town together and have dinner at a small restaurant where the kitchen is really good.`

	SpanishText = `El rápido zorro marrón salta sobre el perro perezoso. En un lugar de la
Mancha, de cuyo nombre no quiero acordarme, no ha mucho tiempo que vivía un hidalgo de los
de lanza en astillero. Hoy hace buen tiempo y los niños juegan en el jardín con sus amigos
de la escuela. Por la noche vamos juntos a la ciudad y cenamos en un pequeño restaurante
donde la cocina es muy buena y los camareros siempre son amables.`
)

// CorpusFiles maps file names to the sample texts, using the
// two-letter-prefix naming of a training directory.
func CorpusFiles() map[string]string {
	return map[string]string{
		"de_sample.txt": GermanText,
		"en_sample.txt": EnglishText,
		"es_sample.txt": SpanishText,
	}
}

// WriteCorpus writes the sample corpus into a fresh temporary directory and
// returns its path.
func WriteCorpus(t *testing.T) string {
	t.Helper()

	dir := CreateTempDir(t)
	for name, text := range CorpusFiles() {
		WriteFile(t, dir, name, text)
	}
	return dir
}
