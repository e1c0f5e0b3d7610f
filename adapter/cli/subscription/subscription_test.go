package subscription

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dorakingx/subscryption/adapter/cli"
	internalApp "github.com/dorakingx/subscryption/internal/app"
	"github.com/dorakingx/subscryption/internal/billing/application/commands"
	"github.com/dorakingx/subscryption/internal/billing/application/queries"
	"github.com/dorakingx/subscryption/internal/billing/domain"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
	"github.com/dorakingx/subscryption/pkg/config"
)

const (
	testOwner      = "acct-owner"
	testSubscriber = "acct-alice"
)

// setupLocalModeTestApp creates a test application with SQLite and one plan.
func setupLocalModeTestApp(t *testing.T) (*cli.App, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "subscription-cli-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := &config.Config{
		AppEnv:         "development",
		SQLitePath:     dbPath,
		LogLevel:       "error",
		Account:        testSubscriber,
		OwnerAccount:   testOwner,
		CustodyAccount: "acct-custody",
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	ctx := context.Background()
	container, err := internalApp.NewContainer(ctx, cfg, logger)
	require.NoError(t, err)

	cliApp := cli.NewApp(
		container.CreatePlanHandler,
		container.UpdatePlanStatusHandler,
		container.SubscribeHandler,
		container.CancelHandler,
		container.CollectPaymentHandler,
		container.SetPausedHandler,
		container.AuthorizePullerHandler,
		container.TransferOwnershipHandler,
		container.GetPlanHandler,
		container.GetPlanCountHandler,
		container.ListPlansHandler,
		container.GetSubscriptionHandler,
		container.IsSubscribedHandler,
	)
	cliApp.SetCurrentAccount(sharedDomain.NewIdentity(testSubscriber))

	// Seed one plan as the owner
	_, err = container.CreatePlanHandler.Handle(ctx, commands.CreatePlanCommand{
		Caller:        sharedDomain.NewIdentity(testOwner),
		Name:          "Basic",
		Price:         1_000_000,
		BillingPeriod: 720 * time.Hour,
	})
	require.NoError(t, err)

	cleanup := func() {
		container.Close()
		os.RemoveAll(tmpDir)
	}

	return cliApp, cleanup
}

func TestSubscribeCmd_Enrolls(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()
	subscribeCmd.SetContext(ctx)

	err := subscribeCmd.RunE(subscribeCmd, []string{"1"})
	require.NoError(t, err)

	active, err := app.IsSubscribedHandler.Handle(ctx, queries.IsSubscribedQuery{
		Subscriber: sharedDomain.NewIdentity(testSubscriber),
		PlanID:     1,
	})
	require.NoError(t, err)
	assert.True(t, active)
}

func TestSubscribeCmd_UnknownPlan(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()
	subscribeCmd.SetContext(ctx)

	err := subscribeCmd.RunE(subscribeCmd, []string{"99"})
	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)
}

func TestCancelCmd_EndsSubscription(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()
	subscribeCmd.SetContext(ctx)
	require.NoError(t, subscribeCmd.RunE(subscribeCmd, []string{"1"}))

	cancelCmd.SetContext(ctx)
	require.NoError(t, cancelCmd.RunE(cancelCmd, []string{"1"}))

	active, err := app.IsSubscribedHandler.Handle(ctx, queries.IsSubscribedQuery{
		Subscriber: sharedDomain.NewIdentity(testSubscriber),
		PlanID:     1,
	})
	require.NoError(t, err)
	assert.False(t, active)

	// Terminal record survives for audit
	sub, err := app.GetSubscriptionHandler.Handle(ctx, queries.GetSubscriptionQuery{
		Subscriber: sharedDomain.NewIdentity(testSubscriber),
		PlanID:     1,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, sub.Status())
}

func TestCancelCmd_NotSubscribed(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()
	cancelCmd.SetContext(ctx)

	err := cancelCmd.RunE(cancelCmd, []string{"1"})
	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotSubscribed)
}

func TestCollectCmd_NeverCollectsEarly(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()
	subscribeCmd.SetContext(ctx)
	require.NoError(t, subscribeCmd.RunE(subscribeCmd, []string{"1"}))

	// Collect as the owner; the renewal is a full period away
	app.SetCurrentAccount(sharedDomain.NewIdentity(testOwner))
	collectCmd.SetContext(ctx)

	err := collectCmd.RunE(collectCmd, []string{testSubscriber, "1"})
	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPaymentNotDue)
}

func TestCollectCmd_UnauthorizedCaller(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()
	subscribeCmd.SetContext(ctx)
	require.NoError(t, subscribeCmd.RunE(subscribeCmd, []string{"1"}))

	// Still acting as the subscriber, who holds no collection rights
	collectCmd.SetContext(ctx)

	err := collectCmd.RunE(collectCmd, []string{testSubscriber, "1"})
	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestStatusCmd_ShowsRecord(t *testing.T) {
	app, cleanup := setupLocalModeTestApp(t)
	defer cleanup()

	cli.SetApp(app)
	defer cli.SetApp(nil)

	ctx := context.Background()
	subscribeCmd.SetContext(ctx)
	require.NoError(t, subscribeCmd.RunE(subscribeCmd, []string{"1"}))

	showRecord = true
	statusCmd.SetContext(ctx)
	require.NoError(t, statusCmd.RunE(statusCmd, []string{"1"}))
}

func TestSubscribeCmd_NoApp(t *testing.T) {
	cli.SetApp(nil)

	ctx := context.Background()
	subscribeCmd.SetContext(ctx)

	err := subscribeCmd.RunE(subscribeCmd, []string{"1"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "application not initialized")
}
