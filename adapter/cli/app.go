package cli

import (
	"github.com/dorakingx/subscryption/internal/billing/application/commands"
	"github.com/dorakingx/subscryption/internal/billing/application/queries"
	sharedDomain "github.com/dorakingx/subscryption/internal/shared/domain"
)

// App holds the CLI application dependencies.
type App struct {
	// Plan Command Handlers
	CreatePlanHandler       *commands.CreatePlanHandler
	UpdatePlanStatusHandler *commands.UpdatePlanStatusHandler

	// Subscription Command Handlers
	SubscribeHandler      *commands.SubscribeHandler
	CancelHandler         *commands.CancelSubscriptionHandler
	CollectPaymentHandler *commands.CollectPaymentHandler

	// Admin Command Handlers
	SetPausedHandler         *commands.SetPausedHandler
	AuthorizePullerHandler   *commands.AuthorizePullerHandler
	TransferOwnershipHandler *commands.TransferOwnershipHandler

	// Query Handlers
	GetPlanHandler         *queries.GetPlanHandler
	GetPlanCountHandler    *queries.GetPlanCountHandler
	ListPlansHandler       *queries.ListPlansHandler
	GetSubscriptionHandler *queries.GetSubscriptionHandler
	IsSubscribedHandler    *queries.IsSubscribedHandler

	// Current account (configured per environment)
	CurrentAccount sharedDomain.Identity
}

// NewApp creates a new CLI application with the provided handlers.
func NewApp(
	createPlanHandler *commands.CreatePlanHandler,
	updatePlanStatusHandler *commands.UpdatePlanStatusHandler,
	subscribeHandler *commands.SubscribeHandler,
	cancelHandler *commands.CancelSubscriptionHandler,
	collectPaymentHandler *commands.CollectPaymentHandler,
	setPausedHandler *commands.SetPausedHandler,
	authorizePullerHandler *commands.AuthorizePullerHandler,
	transferOwnershipHandler *commands.TransferOwnershipHandler,
	getPlanHandler *queries.GetPlanHandler,
	getPlanCountHandler *queries.GetPlanCountHandler,
	listPlansHandler *queries.ListPlansHandler,
	getSubscriptionHandler *queries.GetSubscriptionHandler,
	isSubscribedHandler *queries.IsSubscribedHandler,
) *App {
	return &App{
		CreatePlanHandler:        createPlanHandler,
		UpdatePlanStatusHandler:  updatePlanStatusHandler,
		SubscribeHandler:         subscribeHandler,
		CancelHandler:            cancelHandler,
		CollectPaymentHandler:    collectPaymentHandler,
		SetPausedHandler:         setPausedHandler,
		AuthorizePullerHandler:   authorizePullerHandler,
		TransferOwnershipHandler: transferOwnershipHandler,
		GetPlanHandler:           getPlanHandler,
		GetPlanCountHandler:      getPlanCountHandler,
		ListPlansHandler:         listPlansHandler,
		GetSubscriptionHandler:   getSubscriptionHandler,
		IsSubscribedHandler:      isSubscribedHandler,
	}
}

// SetCurrentAccount updates the account commands act as.
func (a *App) SetCurrentAccount(account sharedDomain.Identity) {
	a.CurrentAccount = account
}

// Caller resolves the acting account, preferring the --account flag over
// the configured default.
func (a *App) Caller() sharedDomain.Identity {
	if accountFlag != "" {
		return sharedDomain.NewIdentity(accountFlag)
	}
	return a.CurrentAccount
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
