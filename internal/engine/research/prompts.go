package research

import (
	"fmt"
	"strings"
)

const summaryPrompt = `Summarize the key points of the following content in one paragraph:

---%s---`

const synthesisPrompt = `%s
Original User Query: "%s"
Here are the summaries from the sources:
%s
Based on ALL summaries, provide a final answer.`

func buildSummaryPrompt(content string) string {
	return fmt.Sprintf(summaryPrompt, content)
}

// summaryBlock formats one source's summary for the synthesis prompt.
func summaryBlock(url, summary string) string {
	return fmt.Sprintf("Source: %s\nSummary: %s\n---\n", url, strings.TrimSpace(summary))
}

func buildSynthesisPrompt(d Directive, topic string, blocks []string) string {
	return fmt.Sprintf(synthesisPrompt, d.Text(), topic, strings.Join(blocks, ""))
}
