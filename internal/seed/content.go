package seed

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
)

// Content generation constants.
const (
	passwordLength  = 16
	minParagraphs   = 1
	maxExtraPara    = 5 // 1-5 paragraphs total
	minSentences    = 2
	maxExtraSent    = 4 // 2-5 sentences total
	minWords        = 6
	maxExtraWords   = 10  // 6-15 words total
	htmlProbability = 0.3 // 30% submitted as HTML, 70% Markdown
)

// generateContent creates a random body that is either HTML or Markdown,
// returning it with its format name.
func generateContent(faker *gofakeit.Faker) (content, format string) {
	numParagraphs := minParagraphs + faker.IntN(maxExtraPara)
	paragraphs := make([]string, numParagraphs)
	for i := range numParagraphs {
		paragraphs[i] = generateParagraph(faker)
	}

	if faker.Float64() < htmlProbability {
		var builder strings.Builder
		for _, p := range paragraphs {
			builder.WriteString("<p>")
			builder.WriteString(p)
			builder.WriteString("</p>\n")
		}
		return builder.String(), "html"
	}

	heading := "## " + titleCase(faker.Noun()) + "\n\n"
	return heading + strings.Join(paragraphs, "\n\n"), "markdown"
}

func generateParagraph(faker *gofakeit.Faker) string {
	numSentences := minSentences + faker.IntN(maxExtraSent)
	sentences := make([]string, numSentences)
	for i := range numSentences {
		sentences[i] = faker.Sentence(minWords + faker.IntN(maxExtraWords))
	}
	return strings.Join(sentences, " ")
}

func generateTitle(faker *gofakeit.Faker) string {
	patterns := []func(*gofakeit.Faker) string{
		func(f *gofakeit.Faker) string { return fmt.Sprintf("Notes on %s", f.Noun()) },
		func(f *gofakeit.Faker) string { return fmt.Sprintf("Why %s %s Matters", f.Adjective(), titleCase(f.Noun())) },
		func(f *gofakeit.Faker) string { return fmt.Sprintf("A Week of %s", titleCase(f.Hobby())) },
		func(f *gofakeit.Faker) string { return fmt.Sprintf("%s, Revisited", titleCase(f.Noun())) },
		func(f *gofakeit.Faker) string { return titleCase(f.HackerPhrase()) },
	}
	return patterns[faker.IntN(len(patterns))](faker)
}

func titleCase(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
