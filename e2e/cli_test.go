package e2e_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/netplay-go/internal/api"
	"github.com/mcoot/netplay-go/internal/factory"
	"github.com/mcoot/netplay-go/internal/services/identity"
	"github.com/mcoot/netplay-go/internal/services/room"
	"github.com/mcoot/netplay-go/internal/ws"
)

const (
	e2eTokenSecret = "e2e-secret-do-not-use"
	e2eAdminToken  = "e2e-admin-do-not-use"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "netplay-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/netplay")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithToken(token string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token", token,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func (r *cliRunner) runWithAdminToken(adminToken string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--admin-token", adminToken,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	server   *http.Server
	addr     string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	// Create application
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app, err := factory.New(factory.Config{
		Logger: logger,
		IdentityConfig: identity.Config{
			Secret:   e2eTokenSecret,
			Audience: "authenticated",
		},
		RoomConfig: room.Config{
			MaxRooms: 10,
		},
	})
	require.NoError(t, err)

	wsHandler := ws.NewHandler(app.RoomController, app.IdentityService, app.Clock, logger, ws.Config{})

	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		RoomController:  app.RoomController,
		IdentityService: app.IdentityService,
		WSHandler:       wsHandler,
		AdminToken:      e2eAdminToken,
		AllowedOrigins:  []string{"*"},
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/health")

	return &testServer{
		server: server,
		addr:   serverURL,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

func signToken(t *testing.T, subject string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub": subject,
		"aud": "authenticated",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(e2eTokenSecret))
	require.NoError(t, err)
	return signed
}

// Response types for JSON parsing
type roomResponse struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Taken       []string `json:"taken"`
	Available   []string `json:"available"`
	Spectators  int      `json:"spectators"`
	Clients     int      `json:"clients"`
	MovesPlayed int      `json:"moves_played"`
	Full        bool     `json:"full"`
}

type profileResponse struct {
	Key         string `json:"key"`
	Kind        string `json:"kind"`
	DisplayName string `json:"display_name"`
	Country     string `json:"country"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_RoomCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// The default room exists from boot
	output, err := cli.run("rooms", "list")
	require.NoError(t, err, "output: %s", output)

	var rooms []roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, "main", rooms[0].ID)
	assert.Equal(t, "Main Room", rooms[0].Label)
	assert.Len(t, rooms[0].Available, 4)

	// Create a room; the id is slugified
	output, err = cli.run("rooms", "create", "--id", "My Room", "--label", "The Lounge")
	require.NoError(t, err, "output: %s", output)

	var created roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &created))
	assert.Equal(t, "my-room", created.ID)
	assert.Equal(t, "The Lounge", created.Label)

	// Create with no id gets a generated one labelled after itself
	output, err = cli.run("rooms", "create")
	require.NoError(t, err, "output: %s", output)

	var generated roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &generated))
	assert.True(t, strings.HasPrefix(generated.ID, "room-"), "id: %s", generated.ID)
	assert.Equal(t, generated.ID, generated.Label)

	// Get the created room
	output, err = cli.run("rooms", "get", "my-room")
	require.NoError(t, err, "output: %s", output)

	var got roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	assert.Equal(t, "my-room", got.ID)
	assert.Equal(t, 0, got.Clients)
	assert.False(t, got.Full)

	// Listing preserves creation order
	output, err = cli.run("rooms", "list")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &rooms))
	require.Len(t, rooms, 3)
	assert.Equal(t, "main", rooms[0].ID)
	assert.Equal(t, "my-room", rooms[1].ID)
	assert.Equal(t, generated.ID, rooms[2].ID)

	// Delete an empty room
	output, err = cli.run("rooms", "delete", "my-room")
	require.NoError(t, err, "output: %s", output)

	var msgResp messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msgResp))
	assert.Contains(t, msgResp.Message, "Deleted room my-room")

	output, err = cli.run("rooms", "list")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &rooms))
	assert.Len(t, rooms, 2)
}

func TestCLI_ProfileCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)
	token := signToken(t, "cli-user-1")

	// No profile stored yet
	output, err := cli.runWithToken(token, "profile", "get")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "not found")

	// Set the profile
	output, err = cli.runWithToken(token, "profile", "set", "--name", "Neo", "--country", "AU")
	require.NoError(t, err, "output: %s", output)

	var profile profileResponse
	require.NoError(t, json.Unmarshal([]byte(output), &profile))
	assert.Equal(t, "cli-user-1", profile.Key)
	assert.Equal(t, "verified", profile.Kind)
	assert.Equal(t, "Neo", profile.DisplayName)
	assert.Equal(t, "au", profile.Country)

	// Read it back
	output, err = cli.runWithToken(token, "profile", "get")
	require.NoError(t, err, "output: %s", output)

	var fetched profileResponse
	require.NoError(t, json.Unmarshal([]byte(output), &fetched))
	assert.Equal(t, profile, fetched)
}

func TestCLI_AdminReset(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Reset is refused without the admin token
	output, err := cli.run("rooms", "reset", "main")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "forbidden")

	output, err = cli.runWithAdminToken("wrong-token", "rooms", "reset", "main")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "forbidden")

	// With the token the room comes back fresh
	output, err = cli.runWithAdminToken(e2eAdminToken, "rooms", "reset", "main")
	require.NoError(t, err, "output: %s", output)

	var resetRoom roomResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resetRoom))
	assert.Equal(t, "main", resetRoom.ID)
	assert.Equal(t, 0, resetRoom.MovesPlayed)
}

func TestCLI_ErrorHandling(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	// Profile requires a verified token
	output, err := cli.run("profile", "get")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "unauthorized")

	// Unknown room
	output, err = cli.run("rooms", "get", "nowhere")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "not found")

	// The default room cannot be deleted
	output, err = cli.run("rooms", "delete", "main")
	assert.Error(t, err)
	assert.Contains(t, strings.ToLower(output), "not permitted")
}
