package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/club_management_app/internal/core/domain"
)

const timeFormat = time.RFC3339Nano

// EncodeLedgerCursor creates an opaque token for the last ledger entry on a page.
func EncodeLedgerCursor(c domain.LedgerCursor) string {
	tokenStr := fmt.Sprintf("%s|%d", c.CreatedAt.UTC().Format(timeFormat), c.Sequence)
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeLedgerCursor parses a token produced by EncodeLedgerCursor.
func DecodeLedgerCursor(token string) (*domain.LedgerCursor, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid pagination token format (split)")
	}

	createdAt, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}
	seq, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (sequence parse): %w", err)
	}

	return &domain.LedgerCursor{CreatedAt: createdAt, Sequence: seq}, nil
}
