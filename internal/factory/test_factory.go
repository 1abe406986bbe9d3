package factory

import (
	"time"

	"github.com/mcoot/netplay-go/internal/dependencies/mocks"
	"github.com/mcoot/netplay-go/internal/services/identity"
	"github.com/mcoot/netplay-go/internal/services/room"
	"github.com/mcoot/netplay-go/internal/storage/memory"
	"github.com/mcoot/netplay-go/internal/testutil"
)

// TestTokenSecret signs tokens that a TestApp's identity service accepts
const TestTokenSecret = "test-secret-do-not-use"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	identityCfg := identity.Config{
		Secret:   TestTokenSecret,
		Audience: "authenticated",
	}

	app := newWithDependencies(store, mockClock, mockRandom, identityCfg, room.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
