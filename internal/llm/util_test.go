package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"json fence", "```json\n{\"country\": \"GB\"}\n```", `{"country": "GB"}`},
		{"bare fence", "```\n[\"Go\", \"Kafka\"]\n```", `["Go", "Kafka"]`},
		{"fence with other language tag", "```javascript\n{\"page_limit\": 2}\n```", `{"page_limit": 2}`},
		{"plain object", `{"summary": "Payments backend role"}`, `{"summary": "Payments backend role"}`},
		{"prose only", "Backend Engineer", "Backend Engineer"},
		{"unbalanced object kept", `{"bullets": ["Built`, `{"bullets": ["Built`},
		{"preamble line", "Sure! I grouped the skills:\n\n{\"Programming\": [\"Go\"], \"Databases\": [\"Postgres\"]}",
			`{"Programming": ["Go"], "Databases": ["Postgres"]}`},
		{"inline preamble", "The posting asks for Go. Result: {\"skills\": [\"Go\"]}", `{"skills": ["Go"]}`},
		{"array after preamble", "Bullets:\n[\"Cut latency by 40%\", \"Led on-call\"]", `["Cut latency by 40%", "Led on-call"]`},
		{"trailing chatter", "{\"labels\": {\"skills\": \"Kenntnisse\"}}\n\nLet me know if you need more!",
			`{"labels": {"skills": "Kenntnisse"}}`},
		{"escaped quotes", `Spec: {"notes": ["Use \"Lebenslauf\" as the title"]}`, `{"notes": ["Use \"Lebenslauf\" as the title"]}`},
		{"braces inside strings", `{"instruction": "Keep {placeholders} and [brackets]"} done`,
			`{"instruction": "Keep {placeholders} and [brackets]"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractBalanced(t *testing.T) {
	assert.Equal(t, `{"a": {"b": [1, {"c": 2}]}}`, extractBalanced(`{"a": {"b": [1, {"c": 2}]}} tail`, '{', '}'))
	assert.Equal(t, `[[1, 2], [3]]`, extractBalanced(`[[1, 2], [3]], more`, '[', ']'))
	assert.Empty(t, extractBalanced("", '{', '}'))
	assert.Empty(t, extractBalanced("not json", '{', '}'))
	assert.Empty(t, extractBalanced(`{"open": true`, '{', '}'))
}
