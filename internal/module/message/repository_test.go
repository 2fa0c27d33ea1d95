package message

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/simp-lee/dating/internal/domain"
	"github.com/simp-lee/dating/internal/module/user"
	"github.com/simp-lee/dating/internal/store/memory"
)

var fixedNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

// setupTestDB creates an in-memory SQLite database with the member and message tables.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&domain.User{}, &domain.Photo{}, &domain.Like{}, &domain.Message{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seed creates three members and the message fixture below.
//
//	id from to read sent
//	1  1    2  no   5h ago
//	2  2    1  no   4h ago
//	3  1    3  yes  1h ago
//	4  3    1  yes  3h ago
//	5  2    1  no   2h ago
//	6  2    3  no   30m ago
func seed(t *testing.T, users domain.UserRepository, msgs domain.MessageRepository) {
	t.Helper()
	ctx := context.Background()
	for _, name := range []string{"alice", "bob", "carol"} {
		u := &domain.User{
			Username:    name,
			KnownAs:     name,
			Gender:      "female",
			DateOfBirth: fixedNow.AddDate(-30, 0, 0),
			Photos:      []domain.Photo{{URL: "https://img/" + name + ".jpg", IsMain: true}},
		}
		require.NoError(t, users.Create(ctx, u))
	}

	fixture := []struct {
		from, to uint
		read     bool
		ago      time.Duration
	}{
		{1, 2, false, 5 * time.Hour},
		{2, 1, false, 4 * time.Hour},
		{1, 3, true, 1 * time.Hour},
		{3, 1, true, 3 * time.Hour},
		{2, 1, false, 2 * time.Hour},
		{2, 3, false, 30 * time.Minute},
	}
	for _, f := range fixture {
		m := &domain.Message{
			SenderID:    f.from,
			RecipientID: f.to,
			Content:     "hello",
			IsRead:      f.read,
			MessageSent: fixedNow.Add(-f.ago),
		}
		require.NoError(t, msgs.Create(ctx, m))
	}
}

func newSQLRepos(t *testing.T) (domain.UserRepository, domain.MessageRepository) {
	t.Helper()
	db := setupTestDB(t)
	return user.NewUserRepository(db), NewMessageRepository(db)
}

func newMemoryRepos() (domain.UserRepository, domain.MessageRepository) {
	d := memory.NewDataset(memory.WithClock(func() time.Time { return fixedNow }))
	return memory.NewUserRepository(d), memory.NewMessageRepository(d)
}

func messageIDs(msgs []domain.Message) []uint {
	ids := make([]uint, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestGetMessagesForUser_Containers(t *testing.T) {
	users, repo := newSQLRepos(t)
	seed(t, users, repo)
	ctx := context.Background()

	tests := []struct {
		container domain.MessageContainer
		want      []uint
	}{
		{domain.ContainerOutbox, []uint{3, 1}},
		{domain.ContainerInbox, []uint{5, 4, 2}},
		{domain.ContainerUnread, []uint{5, 2}},
		{"bogus", []uint{5, 2}},
	}
	for _, tt := range tests {
		t.Run(string(tt.container), func(t *testing.T) {
			p := domain.NewMessageParams(1)
			p.MessageContainer = tt.container
			page, err := repo.GetMessagesForUser(ctx, p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, messageIDs(page.Items))
			assert.EqualValues(t, len(tt.want), page.TotalItems)
		})
	}
}

func TestGetMessagesForUser_LoadsParties(t *testing.T) {
	users, repo := newSQLRepos(t)
	seed(t, users, repo)

	p := domain.NewMessageParams(1)
	p.MessageContainer = domain.ContainerInbox
	page, err := repo.GetMessagesForUser(context.Background(), p)
	require.NoError(t, err)
	require.NotEmpty(t, page.Items)

	first := page.Items[0]
	require.NotNil(t, first.Sender)
	require.NotNil(t, first.Recipient)
	assert.Equal(t, "bob", first.Sender.Username)
	require.NotNil(t, first.Sender.MainPhoto())
	assert.Equal(t, "https://img/bob.jpg", first.Sender.MainPhoto().URL)
}

func TestGetMessagesForUser_InvalidPage(t *testing.T) {
	_, repo := newSQLRepos(t)

	p := domain.NewMessageParams(1)
	p.PageSize = 0
	_, err := repo.GetMessagesForUser(context.Background(), p)
	assert.True(t, domain.IsInvalidArgument(err))
}

func TestGetMessagesForUser_PageBeyondEnd(t *testing.T) {
	sqlUsers, sqlRepo := newSQLRepos(t)
	memUsers, memRepo := newMemoryRepos()
	seed(t, sqlUsers, sqlRepo)
	seed(t, memUsers, memRepo)
	ctx := context.Background()

	tests := []struct {
		name       string
		pageNumber int
		pageSize   int
		wantIDs    []uint
	}{
		{"next page", 2, 3, []uint{}},
		{"far past the end", 1<<62 + 1, 4, []uint{}},
		{"one huge page", 1, math.MaxInt, []uint{5, 4, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := domain.NewMessageParams(1)
			p.MessageContainer = domain.ContainerInbox
			p.PageNumber = tt.pageNumber
			p.PageSize = tt.pageSize

			got, err := sqlRepo.GetMessagesForUser(ctx, p)
			require.NoError(t, err)
			want, err := memRepo.GetMessagesForUser(ctx, p)
			require.NoError(t, err)

			assert.Equal(t, tt.wantIDs, messageIDs(got.Items))
			assert.EqualValues(t, 3, got.TotalItems)
			assert.Equal(t, want.Meta(), got.Meta())
			assert.Equal(t, messageIDs(want.Items), messageIDs(got.Items))
		})
	}
}

func TestGetMessageThread(t *testing.T) {
	users, repo := newSQLRepos(t)
	seed(t, users, repo)
	ctx := context.Background()

	thread, err := repo.GetMessageThread(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint{5, 2, 1}, messageIDs(thread))

	thread, err = repo.GetMessageThread(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{5, 2, 1}, messageIDs(thread))

	thread, err = repo.GetMessageThread(ctx, 1, 99)
	require.NoError(t, err)
	assert.Empty(t, thread)
}

func TestUpdateAndDelete(t *testing.T) {
	users, repo := newSQLRepos(t)
	seed(t, users, repo)
	ctx := context.Background()

	msg, err := repo.GetMessage(ctx, 2)
	require.NoError(t, err)
	readAt := fixedNow
	msg.IsRead = true
	msg.DateRead = &readAt
	require.NoError(t, repo.Update(ctx, msg))

	got, err := repo.GetMessage(ctx, 2)
	require.NoError(t, err)
	assert.True(t, got.IsRead)
	require.NotNil(t, got.DateRead)

	require.NoError(t, repo.Delete(ctx, got))
	_, err = repo.GetMessage(ctx, 2)
	assert.True(t, domain.IsNotFound(err))
	assert.True(t, domain.IsNotFound(repo.Delete(ctx, got)))
}

func TestCreate_DefaultsMessageSent(t *testing.T) {
	users, repo := newSQLRepos(t)
	seed(t, users, repo)
	repo.(*messageRepository).now = func() time.Time { return fixedNow }

	msg := &domain.Message{SenderID: 1, RecipientID: 2, Content: "hi"}
	require.NoError(t, repo.Create(context.Background(), msg))
	assert.Equal(t, fixedNow, msg.MessageSent)
	assert.NotZero(t, msg.ID)
}

func TestListings_MatchMemoryRepository(t *testing.T) {
	sqlUsers, sqlRepo := newSQLRepos(t)
	memUsers, memRepo := newMemoryRepos()
	seed(t, sqlUsers, sqlRepo)
	seed(t, memUsers, memRepo)
	ctx := context.Background()

	for _, userID := range []uint{1, 2, 3} {
		for _, container := range []domain.MessageContainer{domain.ContainerInbox, domain.ContainerOutbox, domain.ContainerUnread} {
			for _, size := range []int{1, 2, 10} {
				for page := 1; page <= 3; page++ {
					p := domain.NewMessageParams(userID)
					p.MessageContainer = container
					p.PageSize = size
					p.PageNumber = page

					want, err := memRepo.GetMessagesForUser(ctx, p)
					require.NoError(t, err)
					got, err := sqlRepo.GetMessagesForUser(ctx, p)
					require.NoError(t, err)

					assert.Equal(t, messageIDs(want.Items), messageIDs(got.Items), "%+v", p)
					assert.Equal(t, want.Meta(), got.Meta(), "%+v", p)
				}
			}
		}
		for _, other := range []uint{1, 2, 3} {
			want, err := memRepo.GetMessageThread(ctx, userID, other)
			require.NoError(t, err)
			got, err := sqlRepo.GetMessageThread(ctx, userID, other)
			require.NoError(t, err)
			assert.Equal(t, messageIDs(want), messageIDs(got))
		}
	}
}

func TestGetMessagesForUser_DriverErrorIsInternal(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	repo := NewMessageRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "messages"`).
		WillReturnError(errors.New("connection reset by peer"))

	_, err = repo.GetMessagesForUser(context.Background(), domain.NewMessageParams(1))
	assert.True(t, domain.IsInternal(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
