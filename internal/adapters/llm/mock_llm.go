package llm

import (
	"context"
	"fmt"

	"github.com/madhukiran/stylist-agent/internal/domain"
)

type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

// Generate echoes the last user text so local runs stay deterministic.
func (m *MockClient) Generate(_ context.Context, turns []domain.Turn) (domain.Turn, error) {
	var lastText string
	var images int
	if len(turns) > 0 {
		for _, p := range turns[len(turns)-1].Parts {
			if p.IsMedia() {
				images++
			} else if p.Text != "" {
				lastText = p.Text
			}
		}
	}

	reply := fmt.Sprintf("As your stylist, here is my take on %q.", lastText)
	if images > 0 {
		reply = fmt.Sprintf("As your stylist, here is my take on %q and the %d image(s) you shared.", lastText, images)
	}
	return domain.TextTurn(domain.RoleModel, reply), nil
}
