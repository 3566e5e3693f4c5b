package chat

import (
	"fmt"
	"strings"

	"github.com/madhukiran/stylist-agent/internal/domain"
)

// ComposeUserTurn converts one unit of user input into a turn. Part order
// is a stable contract: text first (if any), then the image. An image with
// no message gets DefaultCaption so the model always sees an instruction.
func ComposeUserTurn(message string, media *domain.Media, maxMediaBytes int64) (domain.Turn, error) {
	message = strings.TrimSpace(message)

	if message == "" && media == nil {
		return domain.Turn{}, fmt.Errorf("%w: message or image required", domain.ErrInvalidInput)
	}

	if media != nil {
		if !strings.HasPrefix(media.MIMEType, "image/") {
			return domain.Turn{}, fmt.Errorf("%w: unsupported media type %q, only images are allowed", domain.ErrInvalidInput, media.MIMEType)
		}
		if maxMediaBytes > 0 && int64(len(media.Data)) > maxMediaBytes {
			return domain.Turn{}, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrInvalidInput, maxMediaBytes)
		}
		if message == "" {
			message = DefaultCaption
		}
	}

	turn := domain.Turn{Role: domain.RoleUser}
	turn.Parts = append(turn.Parts, domain.TextPart(message))
	if media != nil {
		turn.Parts = append(turn.Parts, domain.MediaPart(media.MIMEType, media.Data))
	}
	return turn, nil
}
