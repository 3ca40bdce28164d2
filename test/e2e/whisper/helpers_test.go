package whisper_test

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/whisper/pkg/whispersdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Container setup and shared helpers for the end-to-end suite. The image is
 * built once in TestMain and every test gets a fresh container.
 */

const testImageName = "whisper-test:latest"

// relaxedLimits keeps the strict production limits from tripping tests
// that register and log in many times.
var relaxedLimits = map[string]string{
	"RATELIMIT_STRICT_REQUESTS":   "1000",
	"RATELIMIT_STRICT_WINDOW_SEC": "60",
	"RATELIMIT_STRICT_BURST":      "1000",
	"RATELIMIT_MODERATE_REQUESTS": "1000",
	"RATELIMIT_MODERATE_BURST":    "1000",
}

var skipReason string

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		skipReason = "e2e suite skipped in -short mode"
		os.Exit(m.Run())
	}
	if err := exec.Command("docker", "info").Run(); err != nil {
		skipReason = "docker is not available"
		os.Exit(m.Run())
	}

	fmt.Fprintf(os.Stdout, "Building whisper Docker image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up whisper Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/whisper/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	_ = exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName).Run()
}

// setupContainer starts the service and returns a client for it. extraEnv
// is merged over the defaults.
func setupContainer(t *testing.T, extraEnv map[string]string) *whispersdk.SDKClient {
	t.Helper()
	if skipReason != "" {
		t.Skip(skipReason)
	}
	ctx := context.Background()

	env := map[string]string{
		"WHISPER_ISSUER": "whisper-e2e",
		"ENV":            "test",
		"LOG_LEVEL":      "info",
		"LOG_FORMAT":     "json",
	}
	for k, v := range extraEnv {
		env[k] = v
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testImageName,
			ExposedPorts: []string{"8080/tcp"},
			Env:          env,
			WaitingFor: wait.ForHTTP("/readyz").
				WithPort("8080/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	return whispersdk.NewSDKClient(fmt.Sprintf("http://%s:%s", host, port.Port()))
}

// registerUser creates username with a derived password.
func registerUser(t *testing.T, client *whispersdk.SDKClient, username string) *whispersdk.Session {
	t.Helper()
	session, err := client.Register(t.Context(), whispersdk.RegisterRequest{
		Username:  username,
		Password:  username + "-password",
		FirstName: username,
		LastName:  "E2E",
		Phone:     "555-0199",
	})
	require.NoError(t, err, "register %s", username)
	return session
}

func requireCode(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, status, whispersdk.StatusOf(err), "error: %v", err)
	require.True(t, whispersdk.IsCode(err, code), "error: %v", err)
}
