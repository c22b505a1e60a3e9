package match

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
	"github.com/gdugdh24/sparkchat-backend/internal/repository/memory"
	"github.com/gdugdh24/sparkchat-backend/internal/repository/mocks"
	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recordingNotifier struct {
	mu      sync.Mutex
	notices map[string][]domain.MatchNotice
}

func (n *recordingNotifier) NotifyMatch(_ context.Context, userID string, notice domain.MatchNotice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.notices == nil {
		n.notices = make(map[string][]domain.MatchNotice)
	}
	n.notices[userID] = append(n.notices[userID], notice)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, list := range n.notices {
		total += len(list)
	}
	return total
}

type stubIcebreakers struct {
	lines []string
	err   error
}

func (s stubIcebreakers) GenerateIcebreakers(context.Context, *domain.User, *domain.User) ([]string, error) {
	return s.lines, s.err
}

type stubPresence map[string]bool

func (p stubPresence) IsOnline(_ context.Context, userID string) bool { return p[userID] }

type mockDeps struct {
	likes    *mocks.MockLikeLedger
	matches  *mocks.MockMatchRepository
	convs    *mocks.MockConversationRepository
	users    *mocks.MockUserRepository
	notifier *recordingNotifier
}

func newMockUseCase(t *testing.T) (*MatchUseCase, mockDeps) {
	ctrl := gomock.NewController(t)
	deps := mockDeps{
		likes:    mocks.NewMockLikeLedger(ctrl),
		matches:  mocks.NewMockMatchRepository(ctrl),
		convs:    mocks.NewMockConversationRepository(ctrl),
		users:    mocks.NewMockUserRepository(ctrl),
		notifier: &recordingNotifier{},
	}
	logger, _ := logtest.NewNullLogger()
	uc := NewMatchUseCase(deps.likes, deps.matches, deps.convs, deps.users, deps.notifier, nil, nil, logger)
	uc.async = func(f func()) { f() }
	return uc, deps
}

func TestLikeAndMatch_Self(t *testing.T) {
	uc, _ := newMockUseCase(t)
	id := uuid.NewString()

	_, err := uc.LikeAndMatch(context.Background(), id, id)
	assert.ErrorIs(t, err, domain.ErrCannotLikeSelf)
}

func TestLikeAndMatch_InvalidTarget(t *testing.T) {
	uc, _ := newMockUseCase(t)

	_, err := uc.LikeAndMatch(context.Background(), uuid.NewString(), "nope")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLikeAndMatch_Duplicate(t *testing.T) {
	uc, deps := newMockUseCase(t)
	ctx := context.Background()
	a, b := uuid.NewString(), uuid.NewString()

	deps.likes.EXPECT().RecordLike(ctx, a, b).Return(true, nil)

	res, err := uc.LikeAndMatch(ctx, a, b)
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.True(t, res.AlreadyLiked)
	assert.Nil(t, res.MatchID)
}

func TestLikeAndMatch_NotMutual(t *testing.T) {
	uc, deps := newMockUseCase(t)
	ctx := context.Background()
	a, b := uuid.NewString(), uuid.NewString()

	deps.likes.EXPECT().RecordLike(ctx, a, b).Return(false, nil)
	deps.likes.EXPECT().HasMutualLike(ctx, a, b).Return(false, nil)

	res, err := uc.LikeAndMatch(ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, &domain.LikeResult{}, res)
}

func TestLikeAndMatch_CreatesAndNotifies(t *testing.T) {
	uc, deps := newMockUseCase(t)
	ctx := context.Background()
	a, b := uuid.NewString(), uuid.NewString()
	low, high := domain.CanonicalPair(a, b)

	match := &domain.Match{ID: uuid.NewString(), UserLowID: low, UserHighID: high, Status: domain.MatchStatusActive}
	conv := &domain.Conversation{ID: uuid.NewString(), MatchID: match.ID}

	gomock.InOrder(
		deps.likes.EXPECT().RecordLike(ctx, a, b).Return(false, nil),
		deps.likes.EXPECT().HasMutualLike(ctx, a, b).Return(true, nil),
		deps.matches.EXPECT().CreateWithConversation(ctx, low, high).Return(match, conv, nil),
	)

	res, err := uc.LikeAndMatch(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, match.ID, *res.MatchID)
	assert.Equal(t, conv.ID, *res.ConversationID)

	require.Len(t, deps.notifier.notices[b], 1)
	assert.Equal(t, domain.MatchNotice{MatchID: match.ID, ConversationID: conv.ID, OtherUserID: a}, deps.notifier.notices[b][0])
}

func TestLikeAndMatch_ConflictReadsBack(t *testing.T) {
	uc, deps := newMockUseCase(t)
	ctx := context.Background()
	a, b := uuid.NewString(), uuid.NewString()
	low, high := domain.CanonicalPair(a, b)

	existing := &domain.Match{ID: uuid.NewString(), UserLowID: low, UserHighID: high, Status: domain.MatchStatusActive}
	conv := &domain.Conversation{ID: uuid.NewString(), MatchID: existing.ID}

	deps.likes.EXPECT().RecordLike(ctx, a, b).Return(false, nil)
	deps.likes.EXPECT().HasMutualLike(ctx, a, b).Return(true, nil)
	deps.matches.EXPECT().CreateWithConversation(ctx, low, high).
		Return(nil, nil, errors.Join(errors.New("insert"), domain.ErrConflict))
	deps.matches.EXPECT().GetByUsers(ctx, low, high).Return(existing, nil)
	deps.convs.EXPECT().Upsert(ctx, existing.ID).Return(conv, nil)

	res, err := uc.LikeAndMatch(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, existing.ID, *res.MatchID)
	assert.Equal(t, conv.ID, *res.ConversationID)
	assert.Zero(t, deps.notifier.count())
}

func TestLikeAndMatch_StoreFailureSurfaces(t *testing.T) {
	uc, deps := newMockUseCase(t)
	ctx := context.Background()
	a, b := uuid.NewString(), uuid.NewString()
	low, high := domain.CanonicalPair(a, b)
	boom := errors.New("connection refused")

	deps.likes.EXPECT().RecordLike(ctx, a, b).Return(false, nil)
	deps.likes.EXPECT().HasMutualLike(ctx, a, b).Return(true, nil)
	deps.matches.EXPECT().CreateWithConversation(ctx, low, high).Return(nil, nil, boom)

	_, err := uc.LikeAndMatch(ctx, a, b)
	assert.ErrorIs(t, err, boom)
}

func TestPass(t *testing.T) {
	uc, deps := newMockUseCase(t)
	ctx := context.Background()
	a, b := uuid.NewString(), uuid.NewString()

	deps.likes.EXPECT().RecordPass(ctx, a, b).Return(true, nil)

	already, err := uc.Pass(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, already)

	_, err = uc.Pass(ctx, a, a)
	assert.ErrorIs(t, err, domain.ErrCannotLikeSelf)
}

func TestEnsureConversation(t *testing.T) {
	ctx := context.Background()
	a, b, stranger := uuid.NewString(), uuid.NewString(), uuid.NewString()
	low, high := domain.CanonicalPair(a, b)
	matchID := uuid.NewString()
	active := &domain.Match{ID: matchID, UserLowID: low, UserHighID: high, Status: domain.MatchStatusActive}
	conv := &domain.Conversation{ID: uuid.NewString(), MatchID: matchID}

	t.Run("existing", func(t *testing.T) {
		uc, deps := newMockUseCase(t)
		deps.matches.EXPECT().GetByID(ctx, matchID).Return(active, nil)
		deps.convs.EXPECT().GetByMatchID(ctx, matchID).Return(conv, nil)

		got, err := uc.EnsureConversation(ctx, a, matchID)
		require.NoError(t, err)
		assert.Equal(t, conv.ID, got.ID)
	})

	t.Run("missing is created", func(t *testing.T) {
		uc, deps := newMockUseCase(t)
		deps.matches.EXPECT().GetByID(ctx, matchID).Return(active, nil)
		deps.convs.EXPECT().GetByMatchID(ctx, matchID).Return(nil, domain.ErrConversationNotFound)
		deps.convs.EXPECT().Upsert(ctx, matchID).Return(conv, nil)

		got, err := uc.EnsureConversation(ctx, b, matchID)
		require.NoError(t, err)
		assert.Equal(t, conv.ID, got.ID)
	})

	t.Run("stranger", func(t *testing.T) {
		uc, deps := newMockUseCase(t)
		deps.matches.EXPECT().GetByID(ctx, matchID).Return(active, nil)

		_, err := uc.EnsureConversation(ctx, stranger, matchID)
		assert.ErrorIs(t, err, domain.ErrNotFoundOrForbidden)
	})

	t.Run("unknown match", func(t *testing.T) {
		uc, deps := newMockUseCase(t)
		deps.matches.EXPECT().GetByID(ctx, matchID).Return(nil, domain.ErrMatchNotFound)

		_, err := uc.EnsureConversation(ctx, a, matchID)
		assert.ErrorIs(t, err, domain.ErrNotFoundOrForbidden)
	})

	t.Run("inactive match", func(t *testing.T) {
		uc, deps := newMockUseCase(t)
		blocked := *active
		blocked.Status = domain.MatchStatusBlocked
		deps.matches.EXPECT().GetByID(ctx, matchID).Return(&blocked, nil)

		_, err := uc.EnsureConversation(ctx, a, matchID)
		assert.ErrorIs(t, err, domain.ErrNotFoundOrForbidden)
	})

	t.Run("malformed id", func(t *testing.T) {
		uc, _ := newMockUseCase(t)
		_, err := uc.EnsureConversation(ctx, a, "m1")
		assert.ErrorIs(t, err, domain.ErrNotFoundOrForbidden)
	})
}

func TestListMatchesFillsPresence(t *testing.T) {
	uc, deps := newMockUseCase(t)
	ctx := context.Background()
	me, online, offline := uuid.NewString(), uuid.NewString(), uuid.NewString()
	uc.presence = stubPresence{online: true}

	deps.matches.EXPECT().ListActive(ctx, me).Return([]*domain.MatchSummary{
		{MatchID: uuid.NewString(), OtherUserID: online},
		{MatchID: uuid.NewString(), OtherUserID: offline},
	}, nil)

	got, err := uc.ListMatches(ctx, me)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].IsOnline)
	assert.False(t, got[1].IsOnline)
}

func TestDiscoverClampsLimit(t *testing.T) {
	uc, deps := newMockUseCase(t)
	ctx := context.Background()
	viewer := &domain.User{ID: uuid.NewString()}

	deps.users.EXPECT().GetByID(ctx, viewer.ID).Return(viewer, nil).Times(2)
	deps.users.EXPECT().Discover(ctx, viewer, defaultDiscoverLimit).Return(nil, nil)
	deps.users.EXPECT().Discover(ctx, viewer, maxDiscoverLimit).Return(nil, nil)

	_, err := uc.Discover(ctx, viewer.ID, 0)
	require.NoError(t, err)
	_, err = uc.Discover(ctx, viewer.ID, 1000)
	require.NoError(t, err)
}

func TestEnrichMatchSavesIcebreakers(t *testing.T) {
	uc, deps := newMockUseCase(t)
	ctx := context.Background()
	a, b := uuid.NewString(), uuid.NewString()
	low, high := domain.CanonicalPair(a, b)
	uc.icebreakers = stubIcebreakers{lines: []string{"hi", "hello"}}

	match := &domain.Match{ID: uuid.NewString(), UserLowID: low, UserHighID: high, Status: domain.MatchStatusActive}
	conv := &domain.Conversation{ID: uuid.NewString(), MatchID: match.ID}

	deps.likes.EXPECT().RecordLike(ctx, a, b).Return(false, nil)
	deps.likes.EXPECT().HasMutualLike(ctx, a, b).Return(true, nil)
	deps.matches.EXPECT().CreateWithConversation(ctx, low, high).Return(match, conv, nil)
	deps.users.EXPECT().GetByID(gomock.Any(), a).Return(&domain.User{ID: a, Name: "A"}, nil)
	deps.users.EXPECT().GetByID(gomock.Any(), b).Return(&domain.User{ID: b, Name: "B"}, nil)
	deps.matches.EXPECT().UpdateIcebreakers(gomock.Any(), match.ID, []string{"hi", "hello"}).Return(nil)

	_, err := uc.LikeAndMatch(ctx, a, b)
	require.NoError(t, err)
}

func TestEnrichMatchIgnoresGeneratorFailure(t *testing.T) {
	uc, deps := newMockUseCase(t)
	ctx := context.Background()
	a, b := uuid.NewString(), uuid.NewString()
	low, high := domain.CanonicalPair(a, b)
	uc.icebreakers = stubIcebreakers{err: errors.New("quota")}

	match := &domain.Match{ID: uuid.NewString(), UserLowID: low, UserHighID: high, Status: domain.MatchStatusActive}
	conv := &domain.Conversation{ID: uuid.NewString(), MatchID: match.ID}

	deps.likes.EXPECT().RecordLike(ctx, a, b).Return(false, nil)
	deps.likes.EXPECT().HasMutualLike(ctx, a, b).Return(true, nil)
	deps.matches.EXPECT().CreateWithConversation(ctx, low, high).Return(match, conv, nil)
	deps.users.EXPECT().GetByID(gomock.Any(), gomock.Any()).Return(&domain.User{}, nil).Times(2)

	res, err := uc.LikeAndMatch(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, res.Matched)
}

func newMemoryUseCase(t *testing.T) (*MatchUseCase, *memory.Store, *recordingNotifier) {
	store := memory.NewStore()
	notifier := &recordingNotifier{}
	logger, _ := logtest.NewNullLogger()
	uc := NewMatchUseCase(store.LikeLedger(), store.Matches(), store.Conversations(), store.Users(), notifier, nil, nil, logger)
	return uc, store, notifier
}

func addUsers(store *memory.Store, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = uuid.NewString()
		store.AddUser(&domain.User{ID: ids[i], Name: ids[i][:8], Gender: domain.GenderOther})
	}
	return ids
}

func TestLikeAndMatch_SequentialScenario(t *testing.T) {
	uc, store, notifier := newMemoryUseCase(t)
	ctx := context.Background()
	users := addUsers(store, 2)
	a, b := users[0], users[1]

	res, err := uc.LikeAndMatch(ctx, a, b)
	require.NoError(t, err)
	assert.False(t, res.Matched)

	res, err = uc.LikeAndMatch(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, res.AlreadyLiked)

	res, err = uc.LikeAndMatch(ctx, b, a)
	require.NoError(t, err)
	require.True(t, res.Matched)
	assert.Equal(t, 1, store.MatchCount())
	assert.Equal(t, 1, store.ConversationCount())
	assert.Equal(t, 1, notifier.count())

	conv, err := uc.EnsureConversation(ctx, a, *res.MatchID)
	require.NoError(t, err)
	assert.Equal(t, *res.ConversationID, conv.ID)
}

// Both users like each other from many goroutines at once. Exactly one match
// and one conversation may exist afterwards and every matched result must
// carry the same ids.
func TestLikeAndMatch_ConcurrentMutualLikes(t *testing.T) {
	const callers = 32

	for round := 0; round < 20; round++ {
		uc, store, notifier := newMemoryUseCase(t)
		ctx := context.Background()
		users := addUsers(store, 2)

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			results []*domain.LikeResult
		)
		start := make(chan struct{})
		for i := 0; i < callers; i++ {
			from, to := users[i%2], users[(i+1)%2]
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				res, err := uc.LikeAndMatch(ctx, from, to)
				assert.NoError(t, err)
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}()
		}
		close(start)
		wg.Wait()

		require.Equal(t, 1, store.MatchCount())
		require.Equal(t, 1, store.ConversationCount())
		assert.Equal(t, 1, notifier.count())

		var matchID, convID string
		matched := 0
		for _, res := range results {
			if !res.Matched {
				continue
			}
			matched++
			if matchID == "" {
				matchID, convID = *res.MatchID, *res.ConversationID
			}
			assert.Equal(t, matchID, *res.MatchID)
			assert.Equal(t, convID, *res.ConversationID)
		}
		assert.GreaterOrEqual(t, matched, 1)
	}
}

func TestEnsureConversation_ConcurrentCallersShareID(t *testing.T) {
	uc, store, _ := newMemoryUseCase(t)
	ctx := context.Background()
	users := addUsers(store, 2)
	low, high := domain.CanonicalPair(users[0], users[1])
	match, _, err := store.Matches().CreateWithConversation(ctx, low, high)
	require.NoError(t, err)

	var wg sync.WaitGroup
	ids := make([]string, 16)
	for i := range ids {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			conv, err := uc.EnsureConversation(ctx, users[i%2], match.ID)
			if assert.NoError(t, err) {
				ids[i] = conv.ID
			}
		}()
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, 1, store.ConversationCount())
}
