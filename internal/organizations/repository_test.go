package organizations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leaguedesk/backend/internal/models"
)

func TestAddMemberRejectsUnknownRole(t *testing.T) {
	repo := NewRepository(nil)
	err := repo.AddMember(context.Background(), nil, 1, 2, models.MembershipRole("owner"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}
