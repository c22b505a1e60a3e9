package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store) (alice, bob string) {
	t.Helper()
	alice, bob = uuid.NewString(), uuid.NewString()
	s.AddUser(&domain.User{ID: alice, Name: "Alice", Gender: domain.GenderFemale, LookingFor: []domain.Gender{domain.GenderMale}})
	s.AddUser(&domain.User{ID: bob, Name: "Bob", Gender: domain.GenderMale, LookingFor: []domain.Gender{domain.GenderFemale}})
	return alice, bob
}

func TestLikeLedger(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	alice, bob := seed(t, s)
	ledger := s.LikeLedger()

	already, err := ledger.RecordLike(ctx, alice, bob)
	require.NoError(t, err)
	assert.False(t, already)

	already, err = ledger.RecordLike(ctx, alice, bob)
	require.NoError(t, err)
	assert.True(t, already)

	mutual, err := ledger.HasMutualLike(ctx, alice, bob)
	require.NoError(t, err)
	assert.False(t, mutual)

	_, err = ledger.RecordLike(ctx, bob, alice)
	require.NoError(t, err)
	mutual, err = ledger.HasMutualLike(ctx, bob, alice)
	require.NoError(t, err)
	assert.True(t, mutual)

	_, err = ledger.RecordLike(ctx, alice, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCreateWithConversationEnforcesPairUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	alice, bob := seed(t, s)
	low, high := domain.CanonicalPair(alice, bob)

	match, conversation, err := s.Matches().CreateWithConversation(ctx, low, high)
	require.NoError(t, err)
	assert.Equal(t, match.ID, conversation.MatchID)

	_, _, err = s.Matches().CreateWithConversation(ctx, low, high)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, s.MatchCount())
	assert.Equal(t, 1, s.ConversationCount())

	upserted, err := s.Conversations().Upsert(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, conversation.ID, upserted.ID)
	assert.Equal(t, 1, s.ConversationCount())
}

func TestListBeforeOrdersByTimestampThenID(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time { return fixed }))
	alice, bob := seed(t, s)
	low, high := domain.CanonicalPair(alice, bob)
	_, conversation, err := s.Matches().CreateWithConversation(ctx, low, high)
	require.NoError(t, err)

	ids := []string{"018f2d2e-0000-7000-8000-000000000003", "018f2d2e-0000-7000-8000-000000000001", "018f2d2e-0000-7000-8000-000000000002"}
	for _, id := range ids {
		require.NoError(t, s.Messages().Create(ctx, &domain.Message{ID: id, ConversationID: conversation.ID, SenderID: alice, Content: "x"}))
	}

	page, err := s.Messages().ListBefore(ctx, conversation.ID, nil, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[0], page[0].ID)
	assert.Equal(t, ids[2], page[1].ID)

	page, err = s.Messages().ListBefore(ctx, conversation.ID, &domain.PageBoundary{CreatedAt: fixed, MessageID: ids[2]}, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[1], page[0].ID)

	page, err = s.Messages().ListBefore(ctx, conversation.ID, &domain.PageBoundary{CreatedAt: fixed}, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestMarkReadSkipsOwnMessages(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	alice, bob := seed(t, s)
	low, high := domain.CanonicalPair(alice, bob)
	_, conversation, err := s.Matches().CreateWithConversation(ctx, low, high)
	require.NoError(t, err)

	own := &domain.Message{ID: uuid.NewString(), ConversationID: conversation.ID, SenderID: alice, Status: domain.MessageStatusSent}
	theirs := &domain.Message{ID: uuid.NewString(), ConversationID: conversation.ID, SenderID: bob, Status: domain.MessageStatusSent}
	require.NoError(t, s.Messages().Create(ctx, own))
	require.NoError(t, s.Messages().Create(ctx, theirs))

	n, err := s.Messages().MarkRead(ctx, conversation.ID, []string{own.ID, theirs.ID, uuid.NewString()}, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = s.Messages().MarkRead(ctx, conversation.ID, []string{theirs.ID}, alice)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDiscoverFiltersSeenAndIncompatible(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	alice, bob := seed(t, s)
	carl := uuid.NewString()
	s.AddUser(&domain.User{ID: carl, Name: "Carl", Gender: domain.GenderMale, LookingFor: []domain.Gender{domain.GenderFemale}})
	dana := uuid.NewString()
	s.AddUser(&domain.User{ID: dana, Name: "Dana", Gender: domain.GenderFemale, LookingFor: []domain.Gender{domain.GenderFemale}})

	viewer, err := s.Users().GetByID(ctx, alice)
	require.NoError(t, err)

	_, err = s.LikeLedger().RecordPass(ctx, alice, bob)
	require.NoError(t, err)

	users, err := s.Users().Discover(ctx, viewer, 10)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, carl, users[0].ID)
}

func TestLoadUsers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	id := uuid.NewString()
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"`+id+`","name":"Eve","gender":"female","lookingFor":["male"]}]`), 0o600))

	s := NewStore()
	n, err := s.LoadUsers(path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	user, err := s.Users().GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Eve", user.Name)
	assert.Equal(t, []domain.Gender{domain.GenderMale}, user.LookingFor)
}
