package matching

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	swipes      map[[2]int64]*SwipeAction
	connections map[int64]*Connection
	profiles    map[int64]*CandidateProfile
	nextID      int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		swipes:      make(map[[2]int64]*SwipeAction),
		connections: make(map[int64]*Connection),
		profiles:    make(map[int64]*CandidateProfile),
	}
}

func (r *fakeRepository) addProfile(userID int64, interests ...string) {
	r.profiles[userID] = &CandidateProfile{
		UserID:    userID,
		Username:  "user",
		Interests: interests,
	}
}

func (r *fakeRepository) InsertSwipe(ctx context.Context, action *SwipeAction) (bool, error) {
	key := [2]int64{action.ActorID, action.TargetID}
	if _, ok := r.swipes[key]; ok {
		return false, nil
	}
	r.nextID++
	action.ID = r.nextID
	action.CreatedAt = time.Now()
	stored := *action
	r.swipes[key] = &stored
	return true, nil
}

func (r *fakeRepository) HasPositiveSwipe(ctx context.Context, actorID, targetID int64) (bool, error) {
	action, ok := r.swipes[[2]int64{actorID, targetID}]
	return ok && action.ActionType.IsPositive(), nil
}

func (r *fakeRepository) ListSwipedTargets(ctx context.Context, actorID int64) ([]int64, error) {
	var targets []int64
	for key := range r.swipes {
		if key[0] == actorID {
			targets = append(targets, key[1])
		}
	}
	return targets, nil
}

func (r *fakeRepository) MarkMutual(ctx context.Context, userA, userB int64) error {
	for _, key := range [][2]int64{{userA, userB}, {userB, userA}} {
		if action, ok := r.swipes[key]; ok {
			action.IsMutual = true
		}
	}
	return nil
}

func pairKey(a, b int64) [2]int64 {
	if a > b {
		a, b = b, a
	}
	return [2]int64{a, b}
}

func (r *fakeRepository) InsertMutualConnection(ctx context.Context, conn *Connection) (bool, error) {
	key := pairKey(conn.RequesterID, conn.ReceiverID)
	for _, existing := range r.connections {
		if pairKey(existing.RequesterID, existing.ReceiverID) == key {
			return false, nil
		}
	}
	r.nextID++
	conn.ID = r.nextID
	conn.RequestedAt = time.Now()
	stored := *conn
	r.connections[conn.ID] = &stored
	return true, nil
}

func (r *fakeRepository) FindConnectionBetween(ctx context.Context, userA, userB int64) (*Connection, error) {
	for _, conn := range r.connections {
		if pairKey(conn.RequesterID, conn.ReceiverID) == pairKey(userA, userB) {
			return conn, nil
		}
	}
	return nil, ErrConnectionNotFound
}

func (r *fakeRepository) GetConnection(ctx context.Context, id int64) (*Connection, error) {
	conn, ok := r.connections[id]
	if !ok {
		return nil, ErrConnectionNotFound
	}
	return conn, nil
}

func (r *fakeRepository) GetUserConnections(ctx context.Context, userID int64, source string) ([]*Connection, error) {
	var conns []*Connection
	for _, conn := range r.connections {
		if conn.Involves(userID) && conn.Status == ConnectionAccepted {
			conns = append(conns, conn)
		}
	}
	return conns, nil
}

func (r *fakeRepository) DeleteConnection(ctx context.Context, id int64) error {
	if _, ok := r.connections[id]; !ok {
		return ErrConnectionNotFound
	}
	delete(r.connections, id)
	return nil
}

func (r *fakeRepository) GetProfile(ctx context.Context, userID int64) (*CandidateProfile, error) {
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return profile, nil
}

func (r *fakeRepository) FindCandidates(ctx context.Context, userID int64, limit, offset int) ([]*CandidateProfile, error) {
	swiped := make(map[int64]bool)
	for key := range r.swipes {
		if key[0] == userID {
			swiped[key[1]] = true
		}
	}

	var ids []int64
	for id := range r.profiles {
		if id != userID && !swiped[id] {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var candidates []*CandidateProfile
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(candidates) >= limit {
			break
		}
		candidates = append(candidates, r.profiles[id])
	}
	return candidates, nil
}

type fakeDirectory struct {
	users map[int64]bool
}

func (d *fakeDirectory) UserExists(ctx context.Context, userID int64) (bool, error) {
	return d.users[userID], nil
}

type fakeNotifier struct {
	notified []int64
	kinds    []string
}

func (n *fakeNotifier) Notify(ctx context.Context, recipientID int64, kind string, referenceID int64, message string) {
	n.notified = append(n.notified, recipientID)
	n.kinds = append(n.kinds, kind)
}

// newTestService takes the Notifier interface so a nil argument stays a
// nil interface instead of a typed nil that dodges the service's guard.
func newTestService(repo *fakeRepository, notifier Notifier) Service {
	users := &fakeDirectory{users: make(map[int64]bool)}
	for id := range repo.profiles {
		users.users[id] = true
	}
	return NewService(repo, NewScoreEngine(), users, notifier, nil)
}

func TestSwipeRejectsSelf(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(1)
	svc := newTestService(repo, nil)

	_, err := svc.Swipe(context.Background(), 1, 1, SwipeLike)
	assert.ErrorIs(t, err, ErrCannotSwipeSelf)
}

func TestSwipeRejectsInvalidType(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(1)
	repo.addProfile(2)
	svc := newTestService(repo, nil)

	_, err := svc.Swipe(context.Background(), 1, 2, SwipeType("MAYBE"))
	assert.ErrorIs(t, err, ErrInvalidSwipeType)
}

func TestSwipeRejectsUnknownUser(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(1)
	svc := newTestService(repo, nil)

	_, err := svc.Swipe(context.Background(), 1, 99, SwipeLike)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDuplicateSwipeIsNoOp(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(1)
	repo.addProfile(2)
	svc := newTestService(repo, nil)

	first, err := svc.Swipe(context.Background(), 1, 2, SwipeLike)
	require.NoError(t, err)
	assert.True(t, first.Recorded)

	second, err := svc.Swipe(context.Background(), 1, 2, SwipeDislike)
	require.NoError(t, err)
	assert.False(t, second.Recorded)
	assert.False(t, second.IsMatch)

	// The original LIKE still stands
	assert.Equal(t, SwipeLike, repo.swipes[[2]int64{1, 2}].ActionType)
}

func TestMutualLikeCreatesOneConnection(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(1, "hiking")
	repo.addProfile(2, "hiking")
	notifier := &fakeNotifier{}
	svc := newTestService(repo, notifier)

	first, err := svc.Swipe(context.Background(), 1, 2, SwipeLike)
	require.NoError(t, err)
	assert.False(t, first.IsMatch)
	assert.Empty(t, repo.connections)

	second, err := svc.Swipe(context.Background(), 2, 1, SwipeLike)
	require.NoError(t, err)
	assert.True(t, second.IsMatch)
	assert.True(t, second.Action.IsMutual)

	require.Len(t, repo.connections, 1)
	for _, conn := range repo.connections {
		assert.Equal(t, ConnectionAccepted, conn.Status)
		require.NotNil(t, conn.MatchScore)
		assert.Equal(t, []string{"hiking"}, []string(conn.MatchedInterests))
	}

	// Both sides notified, both ledger rows flagged
	assert.ElementsMatch(t, []int64{1, 2}, notifier.notified)
	assert.True(t, repo.swipes[[2]int64{1, 2}].IsMutual)
	assert.True(t, repo.swipes[[2]int64{2, 1}].IsMutual)
}

func TestSuperlikeCountsAsPositive(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(1)
	repo.addProfile(2)
	svc := newTestService(repo, nil)

	_, err := svc.Swipe(context.Background(), 1, 2, SwipeSuperlike)
	require.NoError(t, err)

	result, err := svc.Swipe(context.Background(), 2, 1, SwipeLike)
	require.NoError(t, err)
	assert.True(t, result.IsMatch)
}

func TestDislikeNeverMatches(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(1)
	repo.addProfile(2)
	svc := newTestService(repo, nil)

	_, err := svc.Swipe(context.Background(), 1, 2, SwipeDislike)
	require.NoError(t, err)

	result, err := svc.Swipe(context.Background(), 2, 1, SwipeLike)
	require.NoError(t, err)
	assert.False(t, result.IsMatch)
	assert.Empty(t, repo.connections)
}

func TestMutualLikeWithExistingConnectionStillMatches(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(1)
	repo.addProfile(2)
	notifier := &fakeNotifier{}
	svc := newTestService(repo, notifier)

	// Connection already exists, e.g. from a racing swipe on the other side
	_, err := repo.InsertMutualConnection(context.Background(), &Connection{
		RequesterID: 2, ReceiverID: 1, Status: ConnectionAccepted,
	})
	require.NoError(t, err)

	_, err = svc.Swipe(context.Background(), 2, 1, SwipeLike)
	require.NoError(t, err)

	result, err := svc.Swipe(context.Background(), 1, 2, SwipeLike)
	require.NoError(t, err)
	assert.True(t, result.IsMatch)
	assert.Len(t, repo.connections, 1)

	// The conflicting insert is success, but no duplicate notifications
	assert.Empty(t, notifier.notified)
}

func TestDiscoverExcludesSelfAndSwiped(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(1)
	repo.addProfile(2)
	repo.addProfile(3)
	repo.addProfile(4)
	svc := newTestService(repo, nil)

	_, err := svc.Swipe(context.Background(), 1, 3, SwipeDislike)
	require.NoError(t, err)

	profiles, err := svc.Discover(context.Background(), 1, &DiscoverParams{Size: 10})
	require.NoError(t, err)

	var ids []int64
	for _, p := range profiles {
		ids = append(ids, p.UserID)
	}
	assert.ElementsMatch(t, []int64{2, 4}, ids)
}

func TestUnmatchRequiresParticipant(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(1)
	repo.addProfile(2)
	svc := newTestService(repo, nil)

	_, err := repo.InsertMutualConnection(context.Background(), &Connection{
		RequesterID: 1, ReceiverID: 2, Status: ConnectionAccepted,
	})
	require.NoError(t, err)

	var connID int64
	for id := range repo.connections {
		connID = id
	}

	err = svc.Unmatch(context.Background(), connID, 99)
	assert.ErrorIs(t, err, ErrNotParticipant)

	err = svc.Unmatch(context.Background(), connID, 2)
	require.NoError(t, err)
	assert.Empty(t, repo.connections)
}

func TestHasMutualLike(t *testing.T) {
	repo := newFakeRepository()
	repo.addProfile(1)
	repo.addProfile(2)
	svc := newTestService(repo, nil)

	mutual, err := svc.HasMutualLike(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, mutual)

	_, err = svc.Swipe(context.Background(), 1, 2, SwipeLike)
	require.NoError(t, err)
	mutual, err = svc.HasMutualLike(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.False(t, mutual)

	_, err = svc.Swipe(context.Background(), 2, 1, SwipeLike)
	require.NoError(t, err)
	mutual, err = svc.HasMutualLike(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.True(t, mutual)
}
