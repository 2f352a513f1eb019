package command

import (
	"context"
	"fmt"
	"testing"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-extensions/core"
)

func TestStartInstallationCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := core.StartInstallationResult{
		RedirectURL: "https://chat.example.com/oauth/authorize?state=st",
		State:       "st",
	}
	called := false

	svc := stubMutatingService{
		startInstallationFn: func(_ context.Context, req core.StartInstallationRequest) (core.StartInstallationResult, error) {
			called = true
			if req.AccountURL != "acme.example.com" || req.ExtensionCode != "chat" {
				t.Fatalf("unexpected request %+v", req)
			}
			return expected, nil
		},
	}

	cmd := NewStartInstallationCommand(svc)
	collector := gocmd.NewResult[core.StartInstallationResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, StartInstallationMessage{Request: core.StartInstallationRequest{
		AccountURL:    "acme.example.com",
		ExtensionCode: "chat",
	}})
	if err != nil {
		t.Fatalf("execute start installation: %v", err)
	}
	if !called {
		t.Fatalf("expected start installation invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.RedirectURL != expected.RedirectURL || result.State != expected.State {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestMutationCommands_DelegateToService(t *testing.T) {
	t.Run("handle callback", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			handleCallbackFn: func(_ context.Context, req core.CallbackRequest) (core.CallbackResult, error) {
				called = true
				if req.Code != "auth-code" || req.State != "st" {
					t.Fatalf("unexpected callback request %+v", req)
				}
				return core.CallbackResult{Installation: core.Installation{ID: "inst-1"}}, nil
			},
		}
		collector := gocmd.NewResult[core.CallbackResult]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := NewHandleCallbackCommand(svc).Execute(ctx, HandleCallbackMessage{Request: core.CallbackRequest{
			Code:  "auth-code",
			State: "st",
		}}); err != nil {
			t.Fatalf("execute handle callback: %v", err)
		}
		if !called {
			t.Fatalf("expected handle callback invocation")
		}
		result, ok := collector.Load()
		if !ok || result.Installation.ID != "inst-1" {
			t.Fatalf("unexpected result: %#v", result)
		}
	})

	t.Run("provision webhook", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			provisionWebhookFn: func(_ context.Context, req core.ProvisionWebhookRequest) (core.ProvisionWebhookResult, error) {
				called = true
				if req.InstallationID != "inst-1" || req.RemoteAPI.BaseURL != "https://api.acme.example.com" {
					t.Fatalf("unexpected provision request %+v", req)
				}
				return core.ProvisionWebhookResult{Registration: core.WebhookRegistration{RemoteID: "remote-1"}}, nil
			},
		}
		collector := gocmd.NewResult[core.ProvisionWebhookResult]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := NewProvisionWebhookCommand(svc).Execute(ctx, ProvisionWebhookMessage{Request: core.ProvisionWebhookRequest{
			InstallationID: "inst-1",
			ProfileName:    "Acme Chat",
			RemoteAPI: core.RemoteAPIConfig{
				BaseURL:  "https://api.acme.example.com",
				TokenURL: "https://api.acme.example.com/oauth/token",
			},
		}}); err != nil {
			t.Fatalf("execute provision webhook: %v", err)
		}
		if !called {
			t.Fatalf("expected provision webhook invocation")
		}
		result, ok := collector.Load()
		if !ok || result.Registration.RemoteID != "remote-1" {
			t.Fatalf("unexpected result: %#v", result)
		}
	})

	t.Run("disable account", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			disableAccountFn: func(_ context.Context, accountID string) error {
				called = true
				if accountID != "acct_1" {
					t.Fatalf("unexpected account id %q", accountID)
				}
				return nil
			},
		}
		if err := NewDisableAccountCommand(svc).Execute(context.Background(), DisableAccountMessage{AccountID: "acct_1"}); err != nil {
			t.Fatalf("execute disable account: %v", err)
		}
		if !called {
			t.Fatalf("expected disable account invocation")
		}
	})

	t.Run("dispatch action", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			dispatchActionFn: func(_ context.Context, req core.DispatchActionRequest) error {
				called = true
				if req.ActionID != "act_1" {
					t.Fatalf("unexpected action id %q", req.ActionID)
				}
				return nil
			},
		}
		if err := NewDispatchActionCommand(svc).Execute(context.Background(), DispatchActionMessage{Request: core.DispatchActionRequest{
			ActionID: "act_1",
			Payload:  map[string]any{"id": 42},
		}}); err != nil {
			t.Fatalf("execute dispatch action: %v", err)
		}
		if !called {
			t.Fatalf("expected dispatch action invocation")
		}
	})

	t.Run("run expiry sweep", func(t *testing.T) {
		called := false
		svc := stubMutatingService{
			runExpirySweepFn: func(_ context.Context, opts core.ExpirySweepOptions) (core.ExpirySweepResult, error) {
				called = true
				if opts.Limit != 25 {
					t.Fatalf("unexpected sweep options %+v", opts)
				}
				return core.ExpirySweepResult{Scanned: 3, Expired: 2}, nil
			},
		}
		collector := gocmd.NewResult[core.ExpirySweepResult]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := NewRunExpirySweepCommand(svc).Execute(ctx, RunExpirySweepMessage{Options: core.ExpirySweepOptions{Limit: 25}}); err != nil {
			t.Fatalf("execute expiry sweep: %v", err)
		}
		if !called {
			t.Fatalf("expected expiry sweep invocation")
		}
		result, ok := collector.Load()
		if !ok || result.Expired != 2 {
			t.Fatalf("unexpected result: %#v", result)
		}
	})
}

func TestCommands_RequireService(t *testing.T) {
	if err := (&StartInstallationCommand{}).Execute(context.Background(), StartInstallationMessage{}); err == nil {
		t.Fatalf("expected dependency error for missing service")
	}
	if err := (&DispatchActionCommand{}).Execute(context.Background(), DispatchActionMessage{}); err == nil {
		t.Fatalf("expected dependency error for missing service")
	}
}

func TestMessageValidation(t *testing.T) {
	tests := []struct {
		name    string
		msg     interface{ Validate() error }
		wantErr bool
	}{
		{
			name: "start installation valid",
			msg: StartInstallationMessage{Request: core.StartInstallationRequest{
				AccountURL:    "acme.example.com",
				ExtensionCode: "chat",
			}},
			wantErr: false,
		},
		{
			name:    "start installation missing extension",
			msg:     StartInstallationMessage{Request: core.StartInstallationRequest{AccountURL: "acme.example.com"}},
			wantErr: true,
		},
		{
			name:    "handle callback missing state",
			msg:     HandleCallbackMessage{Request: core.CallbackRequest{Code: "auth-code"}},
			wantErr: true,
		},
		{
			name: "provision webhook valid",
			msg: ProvisionWebhookMessage{Request: core.ProvisionWebhookRequest{
				InstallationID: "inst-1",
				ProfileName:    "Acme Chat",
				RemoteAPI: core.RemoteAPIConfig{
					BaseURL:  "https://api.acme.example.com",
					TokenURL: "https://api.acme.example.com/oauth/token",
				},
			}},
			wantErr: false,
		},
		{
			name: "provision webhook missing token url",
			msg: ProvisionWebhookMessage{Request: core.ProvisionWebhookRequest{
				InstallationID: "inst-1",
				ProfileName:    "Acme Chat",
				RemoteAPI:      core.RemoteAPIConfig{BaseURL: "https://api.acme.example.com"},
			}},
			wantErr: true,
		},
		{
			name:    "create account missing url",
			msg:     CreateAccountMessage{Input: core.CreateAccountInput{Name: "Acme"}},
			wantErr: true,
		},
		{
			name:    "disable account missing id",
			msg:     DisableAccountMessage{},
			wantErr: true,
		},
		{
			name: "create extension valid",
			msg: CreateExtensionMessage{Input: core.CreateExtensionInput{
				Name:             "Chat Tool",
				AuthorizationURL: "https://chat.example.com/oauth/authorize",
				TokenURL:         "https://chat.example.com/oauth/token",
				ClientID:         "client-1",
			}},
			wantErr: false,
		},
		{
			name:    "create extension missing client id",
			msg:     CreateExtensionMessage{Input: core.CreateExtensionInput{Name: "Chat Tool", AuthorizationURL: "a", TokenURL: "b"}},
			wantErr: true,
		},
		{
			name: "create action valid",
			msg: CreateActionMessage{Action: core.Action{
				InstallationID: "inst-1",
				Name:           "notify",
				TableSource:    "orders",
				EventType:      "created",
				Message:        "order {id} created",
			}},
			wantErr: false,
		},
		{
			name:    "create action missing message",
			msg:     CreateActionMessage{Action: core.Action{InstallationID: "inst-1", Name: "notify", TableSource: "orders", EventType: "created"}},
			wantErr: true,
		},
		{
			name:    "dispatch action missing id",
			msg:     DispatchActionMessage{},
			wantErr: true,
		},
		{
			name:    "expiry sweep negative ttl",
			msg:     RunExpirySweepMessage{Options: core.ExpirySweepOptions{PendingTTL: -1}},
			wantErr: true,
		},
		{
			name:    "expiry sweep defaults valid",
			msg:     RunExpirySweepMessage{},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

type stubMutatingService struct {
	startInstallationFn func(ctx context.Context, req core.StartInstallationRequest) (core.StartInstallationResult, error)
	handleCallbackFn    func(ctx context.Context, req core.CallbackRequest) (core.CallbackResult, error)
	provisionWebhookFn  func(ctx context.Context, req core.ProvisionWebhookRequest) (core.ProvisionWebhookResult, error)
	createAccountFn     func(ctx context.Context, in core.CreateAccountInput) (core.Account, error)
	disableAccountFn    func(ctx context.Context, accountID string) error
	createExtensionFn   func(ctx context.Context, in core.CreateExtensionInput) (core.Extension, error)
	createActionFn      func(ctx context.Context, action core.Action) (core.Action, error)
	dispatchActionFn    func(ctx context.Context, req core.DispatchActionRequest) error
	runExpirySweepFn    func(ctx context.Context, opts core.ExpirySweepOptions) (core.ExpirySweepResult, error)
}

func (s stubMutatingService) StartInstallation(ctx context.Context, req core.StartInstallationRequest) (core.StartInstallationResult, error) {
	if s.startInstallationFn == nil {
		return core.StartInstallationResult{}, fmt.Errorf("start installation not configured")
	}
	return s.startInstallationFn(ctx, req)
}

func (s stubMutatingService) HandleCallback(ctx context.Context, req core.CallbackRequest) (core.CallbackResult, error) {
	if s.handleCallbackFn == nil {
		return core.CallbackResult{}, fmt.Errorf("handle callback not configured")
	}
	return s.handleCallbackFn(ctx, req)
}

func (s stubMutatingService) ProvisionWebhook(ctx context.Context, req core.ProvisionWebhookRequest) (core.ProvisionWebhookResult, error) {
	if s.provisionWebhookFn == nil {
		return core.ProvisionWebhookResult{}, fmt.Errorf("provision webhook not configured")
	}
	return s.provisionWebhookFn(ctx, req)
}

func (s stubMutatingService) CreateAccount(ctx context.Context, in core.CreateAccountInput) (core.Account, error) {
	if s.createAccountFn == nil {
		return core.Account{}, fmt.Errorf("create account not configured")
	}
	return s.createAccountFn(ctx, in)
}

func (s stubMutatingService) DisableAccount(ctx context.Context, accountID string) error {
	if s.disableAccountFn == nil {
		return fmt.Errorf("disable account not configured")
	}
	return s.disableAccountFn(ctx, accountID)
}

func (s stubMutatingService) CreateExtension(ctx context.Context, in core.CreateExtensionInput) (core.Extension, error) {
	if s.createExtensionFn == nil {
		return core.Extension{}, fmt.Errorf("create extension not configured")
	}
	return s.createExtensionFn(ctx, in)
}

func (s stubMutatingService) CreateAction(ctx context.Context, action core.Action) (core.Action, error) {
	if s.createActionFn == nil {
		return core.Action{}, fmt.Errorf("create action not configured")
	}
	return s.createActionFn(ctx, action)
}

func (s stubMutatingService) DispatchAction(ctx context.Context, req core.DispatchActionRequest) error {
	if s.dispatchActionFn == nil {
		return fmt.Errorf("dispatch action not configured")
	}
	return s.dispatchActionFn(ctx, req)
}

func (s stubMutatingService) RunExpirySweep(ctx context.Context, opts core.ExpirySweepOptions) (core.ExpirySweepResult, error) {
	if s.runExpirySweepFn == nil {
		return core.ExpirySweepResult{}, fmt.Errorf("run expiry sweep not configured")
	}
	return s.runExpirySweepFn(ctx, opts)
}
