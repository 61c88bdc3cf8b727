package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type categorized struct {
	Category string `json:"category"`
	Tip      string `json:"tip"`
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    categorized
		wantErr bool
	}{
		{
			name: "чистый JSON",
			text: `{"category": "entertainment", "tip": "Try the annual plan."}`,
			want: categorized{Category: "entertainment", Tip: "Try the annual plan."},
		},
		{
			name: "блок кода json",
			text: "Here you go:\n```json\n{\"category\": \"health\", \"tip\": \"ok\"}\n```\nEnjoy!",
			want: categorized{Category: "health", Tip: "ok"},
		},
		{
			name: "блок кода без языка",
			text: "```\n{\"category\": \"education\"}\n```",
			want: categorized{Category: "education"},
		},
		{
			name: "объект внутри текста",
			text: `Sure! {"category": "utilities", "tip": "Use reserved instances."} Hope this helps.`,
			want: categorized{Category: "utilities", Tip: "Use reserved instances."},
		},
		{
			name:    "пустой ответ",
			text:    "   ",
			wantErr: true,
		},
		{
			name:    "нет JSON",
			text:    "I cannot categorize this service.",
			wantErr: true,
		},
		{
			name:    "битый JSON",
			text:    `{"category": "entertainment",`,
			wantErr: true,
		},
		{
			name:    "неверный тип поля",
			text:    `{"category": 42}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got categorized
			err := ExtractJSON(tt.text, &got)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrUnparseable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
