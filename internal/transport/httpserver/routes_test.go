package httpserver_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"family-recipes-go/internal/app"
	"family-recipes-go/internal/config"
	"family-recipes-go/internal/metrics"
	"family-recipes-go/internal/testhelpers"
	"family-recipes-go/internal/transport/httpserver"
	"family-recipes-go/pkg/client"
	"family-recipes-go/pkg/logger"
	"family-recipes-go/pkg/optional"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	server *httptest.Server
	api    *client.Client
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Config{
		Env: "test",
		HTTP: config.HTTPConfig{
			AllowedOrigins: []string{"http://localhost:5173"},
			RequestTimeout: 5 * time.Second,
		},
		Auth: config.AuthConfig{
			JWTSecret:  "router-test-secret",
			TokenTTL:   time.Hour,
			BcryptCost: bcrypt.MinCost,
		},
		FrontendURL: "http://app.test",
	}

	dbConn := testhelpers.NewSQLite(t)
	router := app.NewRouter(cfg, dbConn, httpserver.Limiters{}, metrics.New(), logger.NewNop())
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{server: server, api: client.New(server.URL)}
}

func (e *testEnv) register(t *testing.T, name string) *client.Session {
	t.Helper()
	session, err := e.api.Register(context.Background(), client.RegisterInput{
		Email:    strings.ToLower(name) + "@example.com",
		Password: "correct-horse",
		Name:     name,
	})
	require.NoError(t, err)
	return session
}

func (e *testEnv) raw(t *testing.T, method, path, token, body string) (*http.Response, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func apiErr(t *testing.T, err error) *client.APIError {
	t.Helper()
	var target *client.APIError
	require.ErrorAs(t, err, &target)
	return target
}

func stringPtr(value string) *string {
	return &value
}

func TestRecipeSharingAcrossFamilies(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	alice := env.register(t, "Alice")
	family, err := alice.CreateFamily(ctx, "Smiths")
	require.NoError(t, err)
	assert.Equal(t, "admin", family.Role)
	require.NotEmpty(t, family.InviteCode)

	recipe, err := alice.CreateRecipe(ctx, family.ID, client.RecipeInput{
		Name: "Pancakes",
		Ingredients: []client.Ingredient{
			{Quantity: stringPtr("2 cups"), Ingredient: "flour"},
			{Ingredient: "milk"},
		},
		Instructions: []client.Instruction{
			{Instruction: "Mix"},
			{Instruction: "Rest"},
			{Instruction: "Fry"},
		},
	})
	require.NoError(t, err)
	assert.False(t, recipe.IsPublic)
	assert.Nil(t, recipe.PublicSlug)
	assert.Equal(t, "Smiths", recipe.Family.Name)
	assert.Equal(t, "Alice", recipe.Creator.Name)
	require.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, 1, recipe.Ingredients[0].Order)
	assert.Equal(t, 2, recipe.Ingredients[1].Order)
	require.Len(t, recipe.Instructions, 3)
	assert.Equal(t, 3, recipe.Instructions[2].StepNumber)
	assert.Equal(t, "Fry", recipe.Instructions[2].Instruction)

	bob := env.register(t, "Bob")
	joined, err := bob.JoinFamily(ctx, family.InviteCode)
	require.NoError(t, err)
	assert.Equal(t, family.ID, joined.ID)

	listed, err := bob.FamilyRecipes(ctx, family.ID, client.ListParams{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, recipe.ID, listed[0].ID)
	assert.Equal(t, "Alice", listed[0].CreatorName)

	carol := env.register(t, "Carol")
	_, err = carol.Recipe(ctx, recipe.ID)
	assert.Equal(t, http.StatusForbidden, apiErr(t, err).Status)
	assert.Equal(t, "FORBIDDEN", apiErr(t, err).Code)

	published, err := alice.UpdateRecipe(ctx, recipe.ID, client.RecipePatch{IsPublic: optional.Of(true)})
	require.NoError(t, err)
	require.NotNil(t, published.PublicSlug)
	assert.Len(t, *published.PublicSlug, 32)

	shared, err := env.api.PublicRecipe(ctx, *published.PublicSlug)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, shared.ID)
	assert.Len(t, shared.Ingredients, 2)
	assert.Len(t, shared.Instructions, 3)

	viaID, err := carol.Recipe(ctx, recipe.ID)
	require.NoError(t, err)
	assert.True(t, viaID.IsPublic)
}

func TestUnpublishedSlugStopsResolving(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	alice := env.register(t, "Alice")
	family, err := alice.CreateFamily(ctx, "Smiths")
	require.NoError(t, err)
	recipe, err := alice.CreateRecipe(ctx, family.ID, client.RecipeInput{Name: "Stew", IsPublic: true})
	require.NoError(t, err)
	require.NotNil(t, recipe.PublicSlug)
	slug := *recipe.PublicSlug

	hidden, err := alice.UpdateRecipe(ctx, recipe.ID, client.RecipePatch{IsPublic: optional.Of(false)})
	require.NoError(t, err)
	require.NotNil(t, hidden.PublicSlug)
	assert.Equal(t, slug, *hidden.PublicSlug)

	_, err = env.api.PublicRecipe(ctx, slug)
	assert.Equal(t, http.StatusNotFound, apiErr(t, err).Status)

	_, err = env.api.Recipe(ctx, recipe.ID)
	assert.Equal(t, http.StatusUnauthorized, apiErr(t, err).Status)

	republished, err := alice.UpdateRecipe(ctx, recipe.ID, client.RecipePatch{IsPublic: optional.Of(true)})
	require.NoError(t, err)
	assert.Equal(t, slug, *republished.PublicSlug)
}

func TestRecipeUpdateAndDelete(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	alice := env.register(t, "Alice")
	family, err := alice.CreateFamily(ctx, "Smiths")
	require.NoError(t, err)
	bob := env.register(t, "Bob")
	_, err = bob.JoinFamily(ctx, family.InviteCode)
	require.NoError(t, err)

	recipe, err := alice.CreateRecipe(ctx, family.ID, client.RecipeInput{
		Name:  "Soup",
		Notes: stringPtr("salt to taste"),
		Tags:  []string{"winter"},
		Photos: []client.Photo{
			{PhotoURL: "https://img.test/a.jpg"},
			{PhotoURL: "https://img.test/b.jpg"},
		},
	})
	require.NoError(t, err)
	require.Len(t, recipe.Photos, 2)
	assert.True(t, recipe.Photos[0].IsPrimary)

	_, err = bob.UpdateRecipe(ctx, recipe.ID, client.RecipePatch{Name: optional.Of("Bob's soup")})
	assert.Equal(t, http.StatusForbidden, apiErr(t, err).Status)

	updated, err := alice.UpdateRecipe(ctx, recipe.ID, client.RecipePatch{
		Name:  optional.Of("Tomato soup"),
		Notes: optional.Null[string](),
		Tags:  optional.Of([]string{"summer", "quick"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "Tomato soup", updated.Name)
	assert.Nil(t, updated.Notes)
	assert.ElementsMatch(t, []string{"summer", "quick"}, updated.Tags)
	assert.Len(t, updated.Photos, 2, "absent collections stay untouched")

	_, err = alice.UpdateRecipe(ctx, recipe.ID, client.RecipePatch{Name: optional.Of("  ")})
	validationErr := apiErr(t, err)
	assert.Equal(t, http.StatusBadRequest, validationErr.Status)
	assert.Equal(t, "VALIDATION_ERROR", validationErr.Code)

	assert.Equal(t, http.StatusForbidden, apiErr(t, bob.DeleteRecipe(ctx, recipe.ID)).Status)
	require.NoError(t, alice.DeleteRecipe(ctx, recipe.ID))

	_, err = alice.Recipe(ctx, recipe.ID)
	assert.Equal(t, http.StatusNotFound, apiErr(t, err).Status)

	listed, err := alice.FamilyRecipes(ctx, family.ID, client.ListParams{})
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestSearchVisibility(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	alice := env.register(t, "Alice")
	family, err := alice.CreateFamily(ctx, "Smiths")
	require.NoError(t, err)
	_, err = alice.CreateRecipe(ctx, family.ID, client.RecipeInput{Name: "Secret curry"})
	require.NoError(t, err)
	_, err = alice.CreateRecipe(ctx, family.ID, client.RecipeInput{Name: "Open curry", IsPublic: true})
	require.NoError(t, err)

	anonymous, err := env.api.Search(ctx, client.SearchParams{ListParams: client.ListParams{Query: "curry"}})
	require.NoError(t, err)
	require.Len(t, anonymous, 1)
	assert.Equal(t, "Open curry", anonymous[0].Name)

	mine, err := alice.Search(ctx, client.SearchParams{ListParams: client.ListParams{Query: "curry"}})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	carol := env.register(t, "Carol")
	scoped, err := carol.Search(ctx, client.SearchParams{FamilyID: family.ID})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "Open curry", scoped[0].Name)

	_, err = carol.FamilyRecipes(ctx, family.ID, client.ListParams{})
	assert.Equal(t, http.StatusForbidden, apiErr(t, err).Status)
}

func TestFamilyAdministration(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	alice := env.register(t, "Alice")
	family, err := alice.CreateFamily(ctx, "Smiths")
	require.NoError(t, err)
	bob := env.register(t, "Bob")
	_, err = bob.JoinFamily(ctx, family.InviteCode)
	require.NoError(t, err)

	_, err = bob.JoinFamily(ctx, family.InviteCode)
	assert.Equal(t, http.StatusConflict, apiErr(t, err).Status)

	invite, err := alice.Invite(ctx, family.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://app.test/join?code="+family.InviteCode, invite.InviteLink)

	_, err = bob.Invite(ctx, family.ID)
	assert.Equal(t, http.StatusForbidden, apiErr(t, err).Status)
	_, err = bob.RenameFamily(ctx, family.ID, "Bobs")
	assert.Equal(t, http.StatusForbidden, apiErr(t, err).Status)

	renamed, err := alice.RenameFamily(ctx, family.ID, "The Smiths")
	require.NoError(t, err)
	assert.Equal(t, "The Smiths", renamed.Name)

	bobsView, err := bob.Families(ctx)
	require.NoError(t, err)
	require.Len(t, bobsView, 1)
	assert.Equal(t, "member", bobsView[0].Role)
	assert.Empty(t, bobsView[0].InviteCode)
	assert.Equal(t, int64(2), bobsView[0].MemberCount)

	details, err := alice.Family(ctx, family.ID)
	require.NoError(t, err)
	assert.Len(t, details.Members, 2)
	assert.Equal(t, family.InviteCode, details.InviteCode)

	require.NoError(t, alice.RemoveMember(ctx, family.ID, bob.User().ID))
	_, err = bob.Family(ctx, family.ID)
	assert.Equal(t, http.StatusForbidden, apiErr(t, err).Status)
}

func TestAuthFlow(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	alice := env.register(t, "Alice")

	_, err := env.api.Register(ctx, client.RegisterInput{Email: "ALICE@example.com", Password: "correct-horse", Name: "Other"})
	assert.Equal(t, http.StatusConflict, apiErr(t, err).Status)

	_, err = env.api.Register(ctx, client.RegisterInput{Email: "short@example.com", Password: "short", Name: "Short"})
	shortErr := apiErr(t, err)
	assert.Equal(t, http.StatusBadRequest, shortErr.Status)
	assert.Contains(t, shortErr.Details, "password")

	_, err = env.api.Login(ctx, "alice@example.com", "wrong-password")
	assert.Equal(t, http.StatusUnauthorized, apiErr(t, err).Status)

	again, err := env.api.Login(ctx, "alice@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, alice.User().ID, again.User().ID)

	me, err := again.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", me.Email)

	require.NoError(t, again.Logout(ctx))
	_, err = again.Me(ctx)
	assert.ErrorIs(t, err, client.ErrSessionClosed)
}

func TestTransportErrors(t *testing.T) {
	env := setup(t)

	resp, body := env.raw(t, http.MethodGet, "/api/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, `"UNAUTHORIZED"`)

	resp, _ = env.raw(t, http.MethodGet, "/api/families", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = env.raw(t, http.MethodPost, "/api/auth/login", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, `"VALIDATION_ERROR"`)

	resp, body = env.raw(t, http.MethodPost, "/api/auth/login", "", `{"email":"a@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, `"password"`)

	resp, _ = env.raw(t, http.MethodGet, "/api/recipes/public/missing", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.raw(t, http.MethodPost, "/api/photos/uploads", "", `{"content_type":"image/png"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "photo route is only mounted with storage configured")
}

func TestInstructionsAcceptStrings(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	alice := env.register(t, "Alice")
	family, err := alice.CreateFamily(ctx, "Smiths")
	require.NoError(t, err)
	token, err := alice.Token()
	require.NoError(t, err)

	resp, body := env.raw(t, http.MethodPost, "/api/families/"+family.ID+"/recipes", token,
		`{"name":"Toast","instructions":["Slice",{"instruction":"Toast"}]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Contains(t, body, `"instruction":"Slice"`)
	assert.Contains(t, body, `"step_number":2`)
}

func TestHealthCORSAndMetrics(t *testing.T) {
	env := setup(t)

	resp, body := env.raw(t, http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)

	req, err := http.NewRequest(http.MethodOptions, env.server.URL+"/api/families", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	preflight, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = preflight.Body.Close()
	assert.Equal(t, http.StatusNoContent, preflight.StatusCode)
	assert.Equal(t, "http://localhost:5173", preflight.Header.Get("Access-Control-Allow-Origin"))

	resp, body = env.raw(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `http_requests_total{method="GET",route="/api/health",status="200"} 1`)
}
