//go:build integration

package gormrepo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"testing"
	"time"

	"gallery-api/config"
	"gallery-api/database"
	"gallery-api/internal/domain/catalog"
	"gallery-api/internal/domain/patch"
	"gallery-api/internal/domain/users"
	"gallery-api/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

// One postgres container serves the whole package; each test truncates.
var (
	pgOnce      sync.Once
	pgContainer *postgres.PostgresContainer
	pgDB        *database.DB
	pgErr       error

	dockerOnce sync.Once
	dockerOK   bool
)

func TestMain(m *testing.M) {
	code := m.Run()
	if pgDB != nil {
		_ = pgDB.Close()
	}
	if pgContainer != nil {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			fmt.Fprintf(os.Stderr, "terminate postgres container: %v\n", err)
		}
	}
	os.Exit(code)
}

func dockerAvailable() bool {
	dockerOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		dockerOK = exec.CommandContext(ctx, "docker", "info").Run() == nil
	})
	return dockerOK
}

func startPostgres() (*database.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("gallery"),
		postgres.WithUsername("gallery"),
		postgres.WithPassword("gallery"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}
	pgContainer = ctr

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, fmt.Errorf("connection string: %w", err)
	}
	db, err := database.Open(&config.Config{
		AppEnv:            "test",
		DatabaseURL:       dsn,
		DBMaxOpenConns:    5,
		DBMinIdleConns:    1,
		DBConnMaxLifetime: time.Hour,
		DBQueryTimeout:    10 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func testDB(t *testing.T) *database.DB {
	t.Helper()
	if !dockerAvailable() {
		t.Skip("docker not available, skipping postgres integration test")
	}
	pgOnce.Do(func() { pgDB, pgErr = startPostgres() })
	require.NoError(t, pgErr)

	_, err := pgDB.Exec(context.Background(), `TRUNCATE artwork_images, artworks, categories, users, admins CASCADE`)
	require.NoError(t, err)
	return pgDB
}

func seedCategory(t *testing.T, db *database.DB, name string) *catalog.Category {
	t.Helper()
	c := &catalog.Category{Name: name, Color: catalog.DefaultCategoryColor, IsActive: true}
	require.NoError(t, NewCategoryRepository(db).Create(context.Background(), c))
	return c
}

func seedArtwork(t *testing.T, db *database.DB, a catalog.Artwork) *catalog.Artwork {
	t.Helper()
	a.IsActive = true
	if a.Status == "" {
		a.Status = catalog.StatusAvailable
	}
	require.NoError(t, NewArtworkRepository(db).Create(context.Background(), &a, nil))
	return &a
}

func ids(list []catalog.Artwork) []string {
	out := make([]string, 0, len(list))
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

func TestCategoryNameUniqueAmongActive(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewCategoryRepository(db)
	first := seedCategory(t, db, "Prints")

	dup := &catalog.Category{Name: "prints", Color: catalog.DefaultCategoryColor, IsActive: true}
	assert.ErrorIs(t, repo.Create(ctx, dup), repository.ErrDuplicate, "unique index on lower(name)")

	taken, err := repo.ActiveNameTaken(ctx, "PRINTS", "")
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = repo.ActiveNameTaken(ctx, "PRINTS", first.ID)
	require.NoError(t, err)
	assert.False(t, taken, "own id is excluded")

	require.NoError(t, repo.Deactivate(ctx, first.ID))
	assert.ErrorIs(t, repo.Deactivate(ctx, first.ID), repository.ErrNotFound)

	again := &catalog.Category{Name: "Prints", Color: catalog.DefaultCategoryColor, IsActive: true}
	assert.NoError(t, repo.Create(ctx, again), "name frees up once deactivated")
}

func TestCategoryListActiveCountsAndOrder(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewCategoryRepository(db)
	b := seedCategory(t, db, "B")
	a := seedCategory(t, db, "A")
	require.NoError(t, repo.Update(ctx, b.ID, repository.CategoryChanges{SortOrder: patch.Of(1)}))
	require.NoError(t, repo.Update(ctx, a.ID, repository.CategoryChanges{SortOrder: patch.Of(1)}))

	seedArtwork(t, db, catalog.Artwork{Name: "one", Price: decimal.NewFromInt(10), CategoryID: b.ID})
	hidden := seedArtwork(t, db, catalog.Artwork{Name: "two", Price: decimal.NewFromInt(10), CategoryID: b.ID})
	require.NoError(t, NewArtworkRepository(db).Update(ctx, hidden.ID, repository.ArtworkChanges{IsActive: patch.Of(false)}))

	list, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Name, "same sort order falls back to name")
	assert.Equal(t, int64(1), list[1].ArtworkCount, "inactive artworks are not counted")

	n, err := repo.CountActiveArtworks(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	next, err := repo.NextSortOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, next)

	withArt, err := repo.FindActiveWithArtworks(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, withArt.Artworks, 1)
	assert.Equal(t, int64(1), withArt.ArtworkCount)
}

func TestArtworkSearchTreatsWildcardsLiterally(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewArtworkRepository(db)
	c := seedCategory(t, db, "Paper")
	rag := seedArtwork(t, db, catalog.Artwork{Name: "100% Cotton Rag", Price: decimal.NewFromInt(40), CategoryID: c.ID})
	seedArtwork(t, db, catalog.Artwork{Name: "1000 Cranes", Price: decimal.NewFromInt(40), CategoryID: c.ID})
	under := seedArtwork(t, db, catalog.Artwork{Name: "blue_period", Price: decimal.NewFromInt(40), CategoryID: c.ID})
	seedArtwork(t, db, catalog.Artwork{Name: "Blue period", Price: decimal.NewFromInt(40), CategoryID: c.ID})

	list, total, err := repo.List(ctx, repository.ArtworkFilter{Search: "100%", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, []string{rag.ID}, ids(list))

	list, total, err = repo.List(ctx, repository.ArtworkFilter{Search: "e_p", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, []string{under.ID}, ids(list))

	list, total, err = repo.List(ctx, repository.ArtworkFilter{Search: "  COTTON ", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total, "search is trimmed and case-insensitive")
	assert.Equal(t, "Paper", list[0].CategoryName)
}

func TestArtworkListSortsAndFilters(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewArtworkRepository(db)
	c := seedCategory(t, db, "Paintings")
	other := seedCategory(t, db, "Prints")
	mid := seedArtwork(t, db, catalog.Artwork{Name: "Red Barn", Price: decimal.NewFromInt(150), CategoryID: c.ID})
	cheap := seedArtwork(t, db, catalog.Artwork{Name: "Blue Lake", Price: decimal.NewFromInt(50), CategoryID: c.ID, IsFeatured: true})
	dear := seedArtwork(t, db, catalog.Artwork{Name: "Night Sky", Price: decimal.NewFromInt(900), CategoryID: other.ID})

	require.NoError(t, repo.IncrementViews(ctx, cheap.ID))
	require.NoError(t, repo.IncrementViews(ctx, cheap.ID))
	require.NoError(t, repo.IncrementViews(ctx, dear.ID))

	cases := []struct {
		sort string
		want []string
	}{
		{repository.SortDefault, []string{mid.ID, cheap.ID, dear.ID}},
		{repository.SortOldest, []string{mid.ID, cheap.ID, dear.ID}},
		{repository.SortNewest, []string{dear.ID, cheap.ID, mid.ID}},
		{repository.SortPriceLow, []string{cheap.ID, mid.ID, dear.ID}},
		{repository.SortPriceHigh, []string{dear.ID, mid.ID, cheap.ID}},
		{repository.SortPopular, []string{cheap.ID, dear.ID, mid.ID}},
		{"name; DROP TABLE artworks", []string{mid.ID, cheap.ID, dear.ID}},
	}
	for _, tc := range cases {
		t.Run(tc.sort, func(t *testing.T) {
			list, total, err := repo.List(ctx, repository.ArtworkFilter{Sort: tc.sort, Limit: 10})
			require.NoError(t, err)
			assert.EqualValues(t, 3, total)
			assert.Equal(t, tc.want, ids(list))
		})
	}

	featured := true
	list, _, err := repo.List(ctx, repository.ArtworkFilter{Featured: &featured, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{cheap.ID}, ids(list))

	list, _, err = repo.List(ctx, repository.ArtworkFilter{CategoryID: other.ID, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{dear.ID}, ids(list))

	list, total, err := repo.List(ctx, repository.ArtworkFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, list, 1)

	list, total, err = repo.List(ctx, repository.ArtworkFilter{Limit: 2, Offset: 5})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Empty(t, list)
}

func TestIncrementViewsKeepsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewArtworkRepository(db)
	c := seedCategory(t, db, "Prints")
	a := seedArtwork(t, db, catalog.Artwork{Name: "Harbour", Price: decimal.NewFromInt(20), CategoryID: c.ID})

	before, err := repo.FindActive(ctx, a.ID)
	require.NoError(t, err)
	require.NoError(t, repo.IncrementViews(ctx, a.ID))

	after, err := repo.FindActive(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, before.ViewCount+1, after.ViewCount)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt), "a view is not an edit")

	assert.ErrorIs(t, repo.IncrementViews(ctx, "00000000-0000-0000-0000-000000000000"), repository.ErrNotFound)
}

func TestUpdateStatusGuard(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewArtworkRepository(db)
	c := seedCategory(t, db, "Prints")
	a := seedArtwork(t, db, catalog.Artwork{Name: "Harbour", Price: decimal.NewFromInt(20), CategoryID: c.ID})

	ok, err := repo.UpdateStatus(ctx, a.ID, catalog.StatusSold, catalog.StatusAvailable, catalog.StatusReserved)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateStatus(ctx, a.ID, catalog.StatusSold, catalog.StatusAvailable)
	require.NoError(t, err)
	assert.False(t, ok, "already sold")

	ok, err = repo.UpdateStatus(ctx, a.ID, catalog.StatusAvailable)
	require.NoError(t, err)
	assert.True(t, ok, "no guard means any status")
}

func TestArtworkUpdateWritesNull(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewArtworkRepository(db)
	c := seedCategory(t, db, "Prints")
	was := decimal.NewFromInt(30)
	year := 2019
	a := seedArtwork(t, db, catalog.Artwork{Name: "Harbour", Price: decimal.NewFromInt(20), OriginalPrice: &was, Year: &year, CategoryID: c.ID})

	require.NoError(t, repo.Update(ctx, a.ID, repository.ArtworkChanges{
		OriginalPrice: patch.Null[decimal.Decimal](),
		Year:          patch.Null[int](),
		Name:          patch.Of("Harbour at Dusk"),
	}))

	got, err := repo.FindActive(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.OriginalPrice)
	assert.Nil(t, got.Year)
	assert.Equal(t, "Harbour at Dusk", got.Name)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(20)), "untouched column stays")
}

func TestPrimaryImageStaysUnique(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewArtworkRepository(db)
	c := seedCategory(t, db, "Prints")

	a := &catalog.Artwork{Name: "Harbour", Price: decimal.NewFromInt(20), CategoryID: c.ID, IsActive: true, Status: catalog.StatusAvailable}
	first := &catalog.ArtworkImage{URL: "/uploads/1.png", Filename: "1.png"}
	require.NoError(t, repo.Create(ctx, a, first))
	assert.True(t, first.IsPrimary)

	second := &catalog.ArtworkImage{ArtworkID: a.ID, URL: "/uploads/2.png", Filename: "2.png"}
	require.NoError(t, repo.AddImage(ctx, second))
	assert.False(t, second.IsPrimary)

	third := &catalog.ArtworkImage{ArtworkID: a.ID, URL: "/uploads/3.png", Filename: "3.png", IsPrimary: true}
	require.NoError(t, repo.AddImage(ctx, third))

	got, err := repo.FindActive(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 3)
	assert.Equal(t, third.ID, got.PrimaryImage().ID)
	assert.Equal(t, third.ID, got.Images[0].ID, "primary first")

	require.NoError(t, repo.SetPrimaryImage(ctx, a.ID, second.ID))
	got, err = repo.FindActive(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.PrimaryImage().ID)

	// the partial index rejects a second primary written behind the repository's back
	g, cancel := db.Gorm(ctx)
	defer cancel()
	err = g.Model(&catalog.ArtworkImage{}).Where("id = ?", first.ID).Update("is_primary", true).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	removed, err := repo.DeleteImage(ctx, a.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, removed.ID)
	got, err = repo.FindActive(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 2)
	assert.Equal(t, first.ID, got.PrimaryImage().ID, "oldest remaining image is promoted")

	_, err = repo.DeleteImage(ctx, a.ID, second.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReplaceAndRemovePrimaryImage(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewArtworkRepository(db)
	c := seedCategory(t, db, "Prints")
	a := seedArtwork(t, db, catalog.Artwork{Name: "Harbour", Price: decimal.NewFromInt(20), CategoryID: c.ID})

	img := &catalog.ArtworkImage{URL: "/uploads/a.png", Filename: "a.png", MimeType: "image/png"}
	require.NoError(t, repo.ReplacePrimaryImage(ctx, a.ID, img))
	firstID := img.ID

	next := &catalog.ArtworkImage{URL: "/uploads/b.webp", Filename: "b.webp", MimeType: "image/webp"}
	require.NoError(t, repo.ReplacePrimaryImage(ctx, a.ID, next))
	assert.Equal(t, firstID, next.ID, "primary row is overwritten in place")

	got, err := repo.FindActive(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 1)
	assert.Equal(t, "/uploads/b.webp", got.Images[0].URL)

	removed, err := repo.RemovePrimaryImage(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "b.webp", removed[0].Filename)

	got, err = repo.FindActive(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Images)
}

func TestDeleteArtworkCascadesImages(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewArtworkRepository(db)
	c := seedCategory(t, db, "Prints")
	a := &catalog.Artwork{Name: "Harbour", Price: decimal.NewFromInt(20), CategoryID: c.ID, IsActive: true, Status: catalog.StatusAvailable}
	require.NoError(t, repo.Create(ctx, a, &catalog.ArtworkImage{URL: "/uploads/1.png", Filename: "1.png"}))
	require.NoError(t, repo.AddImage(ctx, &catalog.ArtworkImage{ArtworkID: a.ID, URL: "/uploads/2.png", Filename: "2.png"}))

	removed, err := repo.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	_, err = repo.FindActive(ctx, a.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	var left int64
	require.NoError(t, db.Query(ctx, &left, `SELECT COUNT(*) FROM artwork_images WHERE artwork_id = ?`, a.ID))
	assert.Zero(t, left)

	_, err = repo.Delete(ctx, a.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewUserRepository(db)

	hash := "hash"
	u := &users.User{FirstName: "Ada", LastName: "Byron", Email: "ada@example.com", PasswordHash: &hash, AuthProvider: users.ProviderLocal, IsActive: true}
	require.NoError(t, repo.Create(ctx, u))

	dup := &users.User{FirstName: "A", LastName: "B", Email: "ada@example.com", AuthProvider: users.ProviderLocal, IsActive: true}
	assert.ErrorIs(t, repo.Create(ctx, dup), repository.ErrDuplicate)

	got, err := repo.FindByEmail(ctx, "  ADA@example.com ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	require.NoError(t, repo.LinkGoogle(ctx, u.ID, "sub-1"))
	got, err = repo.FindByGoogleSub(ctx, "sub-1")
	require.NoError(t, err)
	assert.True(t, got.IsEmailVerified)

	token := "reset"
	require.NoError(t, repo.SetResetToken(ctx, u.ID, &token))
	require.NoError(t, repo.UpdatePassword(ctx, u.ID, "new-hash"))
	got, err = repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ResetToken, "password change clears the reset token")
	require.NotNil(t, got.PasswordHash)
	assert.Equal(t, "new-hash", *got.PasswordHash)

	assert.ErrorIs(t, repo.UpdateLastLogin(ctx, "00000000-0000-0000-0000-000000000000", time.Now()), repository.ErrNotFound)
}

func TestAdminRepository(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewAdminRepository(db)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	a := &users.AdminUser{Username: "admin", Email: "admin@example.com", PasswordHash: "hash", IsActive: true}
	require.NoError(t, repo.Create(ctx, a))

	n, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.FindByEmail(ctx, "Admin@Example.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, a.ID, at))
	got, err = repo.FindByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.True(t, at.Equal(*got.LastLogin))
}
