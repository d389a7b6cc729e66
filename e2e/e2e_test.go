//go:build e2e
// +build e2e

package e2e_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"family-recipes-go/internal/app"
	"family-recipes-go/internal/config"
	"family-recipes-go/internal/db"
	"family-recipes-go/internal/metrics"
	"family-recipes-go/internal/ratelimit"
	"family-recipes-go/internal/testhelpers"
	"family-recipes-go/internal/transport/httpserver"
	"family-recipes-go/pkg/client"
	"family-recipes-go/pkg/logger"
	"family-recipes-go/pkg/optional"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type testEnv struct {
	server *httptest.Server
	api    *client.Client
	db     *gorm.DB
	redis  *redis.Client
}

type envOptions struct {
	loginLimit int
}

func setupE2E(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	log := logger.NewNop()
	cfg := config.Config{
		Env: "test",
		HTTP: config.HTTPConfig{
			AllowedOrigins: []string{"http://localhost:5173"},
			RequestTimeout: 10 * time.Second,
		},
		DB: config.DBConfig{
			DSN:          testhelpers.PostgresDSN(t),
			MaxOpenConns: 10,
			MaxIdleConns: 5,
		},
		Auth: config.AuthConfig{
			JWTSecret:  "e2e-secret",
			TokenTTL:   time.Hour,
			BcryptCost: 4,
		},
		FrontendURL: "http://app.test",
	}

	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	if err := db.Migrate(dbConn, log); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := cleanDB(dbConn); err != nil {
		t.Fatalf("clean db: %v", err)
	}

	env := &testEnv{db: dbConn}

	var limiters httpserver.Limiters
	if opts.loginLimit > 0 {
		redisClient, err := ratelimit.NewClient(context.Background(), testhelpers.RedisURL(t))
		if err != nil {
			t.Fatalf("redis connect: %v", err)
		}
		if err := redisClient.FlushDB(context.Background()).Err(); err != nil {
			t.Fatalf("redis flush: %v", err)
		}
		env.redis = redisClient
		limiters.Login = ratelimit.New(redisClient, ratelimit.Config{
			Limit:     opts.loginLimit,
			Window:    time.Minute,
			KeyPrefix: "e2e:login",
		})
	}

	router := app.NewRouter(cfg, dbConn, limiters, metrics.New(), log)
	env.server = httptest.NewServer(router)
	env.api = client.New(env.server.URL)
	t.Cleanup(env.close)
	return env
}

func (e *testEnv) close() {
	e.server.Close()
	if e.redis != nil {
		_ = e.redis.Close()
	}
	sqlDB, err := e.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

func cleanDB(dbConn *gorm.DB) error {
	return dbConn.WithContext(context.Background()).Exec(
		"TRUNCATE TABLE recipe_categories, recipe_tags, recipe_photos, recipe_instructions, recipe_ingredients, " +
			"recipes, family_members, families, users RESTART IDENTITY CASCADE",
	).Error
}

func (e *testEnv) register(t *testing.T, name string) *client.Session {
	t.Helper()
	session, err := e.api.Register(context.Background(), client.RegisterInput{
		Email:    name + "@example.com",
		Password: "correct-horse",
		Name:     name,
	})
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return session
}

func expectStatus(t *testing.T, err error, status int) {
	t.Helper()
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected api error with status %d, got %v", status, err)
	}
	if apiErr.Status != status {
		t.Fatalf("expected status %d, got %d (%s: %s)", status, apiErr.Status, apiErr.Code, apiErr.Message)
	}
}

func TestE2ERecipeSharing(t *testing.T) {
	env := setupE2E(t, envOptions{})
	ctx := context.Background()

	if err := env.api.Health(ctx); err != nil {
		t.Fatalf("health: %v", err)
	}

	alice := env.register(t, "alice")
	family, err := alice.CreateFamily(ctx, "Smiths")
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	if family.Role != "admin" || len(family.InviteCode) != 32 {
		t.Fatalf("unexpected family: %+v", family)
	}

	quantity := "2 cups"
	recipe, err := alice.CreateRecipe(ctx, family.ID, client.RecipeInput{
		Name:         "Pancakes",
		Ingredients:  []client.Ingredient{{Quantity: &quantity, Ingredient: "flour"}, {Ingredient: "milk"}},
		Instructions: []client.Instruction{{Instruction: "Mix"}, {Instruction: "Rest"}, {Instruction: "Fry"}},
		Tags:         []string{"breakfast"},
		Categories:   []string{"sweet"},
	})
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	if recipe.PublicSlug != nil || len(recipe.Ingredients) != 2 || len(recipe.Instructions) != 3 {
		t.Fatalf("unexpected recipe: %+v", recipe)
	}

	bob := env.register(t, "bob")
	if _, err := bob.JoinFamily(ctx, family.InviteCode); err != nil {
		t.Fatalf("join: %v", err)
	}
	listed, err := bob.FamilyRecipes(ctx, family.ID, client.ListParams{Tag: "breakfast"})
	if err != nil {
		t.Fatalf("list recipes: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != recipe.ID {
		t.Fatalf("expected bob to see the recipe, got %+v", listed)
	}

	carol := env.register(t, "carol")
	_, err = carol.Recipe(ctx, recipe.ID)
	expectStatus(t, err, http.StatusForbidden)

	published, err := alice.UpdateRecipe(ctx, recipe.ID, client.RecipePatch{IsPublic: optional.Of(true)})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if published.PublicSlug == nil {
		t.Fatalf("expected slug after publishing")
	}

	shared, err := env.api.PublicRecipe(ctx, *published.PublicSlug)
	if err != nil {
		t.Fatalf("public read: %v", err)
	}
	if shared.ID != recipe.ID || len(shared.Instructions) != 3 || shared.Creator.Name != "alice" {
		t.Fatalf("unexpected shared recipe: %+v", shared)
	}

	if err := alice.DeleteRecipe(ctx, recipe.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = env.api.PublicRecipe(ctx, *published.PublicSlug)
	expectStatus(t, err, http.StatusNotFound)
}

func TestE2EConcurrentPublicCreatesGetDistinctSlugs(t *testing.T) {
	env := setupE2E(t, envOptions{})
	ctx := context.Background()

	alice := env.register(t, "alice")
	family, err := alice.CreateFamily(ctx, "Smiths")
	if err != nil {
		t.Fatalf("create family: %v", err)
	}

	const workers = 8
	slugs := make(chan string, workers)
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recipe, err := alice.CreateRecipe(ctx, family.ID, client.RecipeInput{Name: "Bread", IsPublic: true})
			if err != nil {
				errs <- err
				return
			}
			slugs <- *recipe.PublicSlug
		}()
	}
	wg.Wait()
	close(slugs)
	close(errs)

	for err := range errs {
		t.Fatalf("create: %v", err)
	}
	seen := map[string]bool{}
	for slug := range slugs {
		if seen[slug] {
			t.Fatalf("duplicate slug %s", slug)
		}
		seen[slug] = true
	}
	if len(seen) != workers {
		t.Fatalf("expected %d slugs, got %d", workers, len(seen))
	}
}

func TestE2ESearchAcrossFamilies(t *testing.T) {
	env := setupE2E(t, envOptions{})
	ctx := context.Background()

	alice := env.register(t, "alice")
	smiths, err := alice.CreateFamily(ctx, "Smiths")
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	dave := env.register(t, "dave")
	joneses, err := dave.CreateFamily(ctx, "Joneses")
	if err != nil {
		t.Fatalf("create family: %v", err)
	}

	for _, input := range []struct {
		session *client.Session
		family  string
		name    string
		public  bool
	}{
		{alice, smiths.ID, "Smith chili", false},
		{alice, smiths.ID, "Smith public chili", true},
		{dave, joneses.ID, "Jones chili", false},
		{dave, joneses.ID, "Jones public chili", true},
	} {
		if _, err := input.session.CreateRecipe(ctx, input.family, client.RecipeInput{Name: input.name, IsPublic: input.public}); err != nil {
			t.Fatalf("create %s: %v", input.name, err)
		}
	}

	params := client.SearchParams{ListParams: client.ListParams{Query: "chili"}}

	anonymous, err := env.api.Search(ctx, params)
	if err != nil {
		t.Fatalf("anonymous search: %v", err)
	}
	if len(anonymous) != 2 {
		t.Fatalf("anonymous should see 2 public recipes, got %d", len(anonymous))
	}

	mine, err := alice.Search(ctx, params)
	if err != nil {
		t.Fatalf("alice search: %v", err)
	}
	if len(mine) != 3 {
		t.Fatalf("alice should see 3 recipes, got %d", len(mine))
	}

	params.FamilyID = joneses.ID
	scoped, err := alice.Search(ctx, params)
	if err != nil {
		t.Fatalf("scoped search: %v", err)
	}
	if len(scoped) != 1 || scoped[0].Name != "Jones public chili" {
		t.Fatalf("non-member family search should be public only, got %+v", scoped)
	}
}

func TestE2ELoginRateLimit(t *testing.T) {
	env := setupE2E(t, envOptions{loginLimit: 2})
	ctx := context.Background()

	env.register(t, "alice")

	for i := 0; i < 2; i++ {
		if _, err := env.api.Login(ctx, "alice@example.com", "correct-horse"); err != nil {
			t.Fatalf("login %d: %v", i, err)
		}
	}

	_, err := env.api.Login(ctx, "alice@example.com", "correct-horse")
	expectStatus(t, err, http.StatusTooManyRequests)
}
