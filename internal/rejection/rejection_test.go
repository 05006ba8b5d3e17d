package rejection

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"invalid", fmt.Errorf("%w: price -1", ErrInvalidInput), KindInvalidInput},
		{"uncovered", fmt.Errorf("%w: 30", ErrUncovered), KindUncovered},
		{"unreachable", ErrUnreachable, KindUnreachable},
		{"out of band", fmt.Errorf("ladder: %w", ErrOutOfBand), KindOutOfBand},
		{"limit wraps unreachable", fmt.Errorf("%w: %w", ErrIterationLimit, ErrUnreachable), KindIterationLimit},
		{"other", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsRejection(t *testing.T) {
	assert.True(t, IsRejection(fmt.Errorf("wrap: %w", ErrOutOfBand)))
	assert.False(t, IsRejection(errors.New("connection refused")))
	assert.False(t, IsRejection(nil))
}
