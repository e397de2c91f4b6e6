package llm

import (
	"regexp"
	"strings"

	"github.com/use-agent/quizpilot/models"
)

var (
	pythonFenceRe = regexp.MustCompile("(?s)```python\\s*\\n(.*?)```")
	bareFenceRe   = regexp.MustCompile("(?s)```\\s*\\n(.*?)```")
)

// ExtractCodeBlock pulls the script out of a model response. A
// language-tagged python fence wins; a bare fence is accepted as a
// fallback. Responses with neither are an error, never executed as-is.
func ExtractCodeBlock(response string) (string, error) {
	if m := pythonFenceRe.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	if m := bareFenceRe.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	return "", models.NewQuizError(models.ErrCodeNoCodeGenerated, "response contains no fenced code block", nil)
}
