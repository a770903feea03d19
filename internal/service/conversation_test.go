package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/faycal55/respira/internal/domain"
	apperrors "github.com/faycal55/respira/pkg/errors"
	"github.com/faycal55/respira/pkg/logger"
	"github.com/faycal55/respira/pkg/pagination"
)

func newConversationFixture() (*ConversationService, *mockConversationRepository, *mockMessageRepository) {
	convs := new(mockConversationRepository)
	msgs := new(mockMessageRepository)
	svc := NewConversationService(convs, msgs, logger.Discard())
	svc.now = func() time.Time { return time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC) }
	return svc, convs, msgs
}

func TestConversationService_CreateDefaultsTitle(t *testing.T) {
	svc, convs, _ := newConversationFixture()
	convs.On("Create", mock.Anything, mock.AnythingOfType("*domain.Conversation")).Return(nil)

	c, err := svc.Create(context.Background(), "u-1", "   ")
	require.NoError(t, err)
	assert.Equal(t, "Conversation du 07/03/2026", c.Title)
	assert.Equal(t, "u-1", c.UserID)
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)
}

func TestConversationService_List(t *testing.T) {
	svc, convs, _ := newConversationFixture()
	p := pagination.Params{Page: 2, PerPage: 2, Offset: 2}
	convs.On("ListByUser", mock.Anything, "u-1", 2, 2).
		Return([]domain.Conversation{{ID: "c-3"}, {ID: "c-4"}}, 5, nil)

	res, err := svc.List(context.Background(), "u-1", p)
	require.NoError(t, err)
	assert.Len(t, res.Data, 2)
	assert.Equal(t, 3, res.TotalPages)
	assert.True(t, res.HasNext)
	assert.True(t, res.HasPrev)
}

func TestConversationService_MessagesRequireOwnership(t *testing.T) {
	svc, convs, msgs := newConversationFixture()
	convs.On("GetByID", mock.Anything, "c-1").Return(&domain.Conversation{ID: "c-1", UserID: "someone-else"}, nil)

	_, err := svc.Messages(context.Background(), "u-1", "c-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	msgs.AssertNotCalled(t, "ListByConversation", mock.Anything, mock.Anything)
}

func TestConversationService_Messages(t *testing.T) {
	svc, convs, msgs := newConversationFixture()
	convs.On("GetByID", mock.Anything, "c-1").Return(&domain.Conversation{ID: "c-1", UserID: "u-1"}, nil)
	msgs.On("ListByConversation", mock.Anything, "c-1").Return([]domain.Message{{ID: "m-1"}}, nil)

	got, err := svc.Messages(context.Background(), "u-1", "c-1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestConversationService_AddMessage(t *testing.T) {
	svc, convs, msgs := newConversationFixture()
	convs.On("GetByID", mock.Anything, "c-1").Return(&domain.Conversation{ID: "c-1", UserID: "u-1"}, nil)
	msgs.On("Create", mock.Anything, mock.AnythingOfType("*domain.Message")).Return(nil)

	user, err := svc.AddMessage(context.Background(), "u-1", "c-1", AddMessageInput{Role: domain.RoleUser, Content: " Bonjour "})
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", user.Content)
	assert.Equal(t, "u-1", user.UserID)
	assert.Equal(t, "c-1", user.ConversationID)

	reply, err := svc.AddMessage(context.Background(), "u-1", "c-1", AddMessageInput{Role: domain.RoleAssistant, Content: "Salut"})
	require.NoError(t, err)
	assert.Empty(t, reply.UserID)
}

func TestConversationService_AddMessageValidation(t *testing.T) {
	svc, convs, _ := newConversationFixture()

	_, err := svc.AddMessage(context.Background(), "u-1", "c-1", AddMessageInput{Role: "system", Content: "x"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.AddMessage(context.Background(), "u-1", "c-1", AddMessageInput{Role: domain.RoleUser, Content: "  "})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	convs.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestProfileService_Update(t *testing.T) {
	profiles := new(mockProfileRepository)
	svc := NewProfileService(profiles, logger.Discard())
	ctx := context.Background()

	profiles.On("Get", ctx, "u-1").Return(&domain.Profile{ID: "u-1", FirstName: "Camille", City: "Lyon"}, nil)
	profiles.On("Update", ctx, mock.AnythingOfType("*domain.Profile")).Return(nil)

	country, city := " France ", ""
	p, err := svc.Update(ctx, "u-1", domain.ProfileUpdate{Country: &country, City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Camille", p.FirstName)
	assert.Equal(t, "France", p.Country)
	assert.Empty(t, p.City)
}

func TestProfileService_UpdateRejectsBlankFirstName(t *testing.T) {
	profiles := new(mockProfileRepository)
	svc := NewProfileService(profiles, logger.Discard())
	profiles.On("Get", mock.Anything, "u-1").Return(&domain.Profile{ID: "u-1", FirstName: "Camille"}, nil)

	blank := " "
	_, err := svc.Update(context.Background(), "u-1", domain.ProfileUpdate{FirstName: &blank})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	profiles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
