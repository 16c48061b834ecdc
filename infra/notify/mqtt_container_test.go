package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cbsthiago-dev/progbunker-application/core/model"
	corenotify "github.com/cbsthiago-dev/progbunker-application/core/notify"
)

func startMosquitto(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	conf := `listener 1883
allow_anonymous true
persistence false
log_dest stdout
log_type error
log_type warning
`
	dir := t.TempDir()
	path := filepath.Join(dir, "mosquitto.conf")
	if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
		t.Fatalf("write conf: %v", err)
	}

	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{
			{
				HostFilePath:      path,
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0644,
			},
		},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("container start: %v", err)
	}
	host, err := cont.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := cont.MappedPort(ctx, "1883")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())
	if err := waitForMQTTReady(broker, 5*time.Second); err != nil {
		t.Skipf("mosquitto not ready: %v", err)
	}
	return cont, broker
}

func waitForMQTTReady(broker string, timeout time.Duration) error {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("probe")
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		cli := paho.NewClient(opts)
		token := cli.Connect()
		token.Wait()
		if token.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		lastErr = token.Error()
		time.Sleep(100 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for broker")
	}
	return lastErr
}

func TestNotifyCommitWithMosquittoContainer(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed")
	}
	ctx := context.Background()

	cont, broker := startMosquitto(ctx, t)
	defer func() { _ = cont.Terminate(ctx) }()

	subOpts := paho.NewClientOptions().AddBroker(broker).SetClientID("crew-sim")
	sub := paho.NewClient(subOpts)
	if token := sub.Connect(); token.Wait() && token.Error() != nil {
		t.Fatalf("subscriber connect: %v", token.Error())
	}
	defer sub.Disconnect(100)

	received := make(chan corenotify.Order, 1)
	if token := sub.Subscribe("bunker/barge/+/orders", 1, func(_ paho.Client, m paho.Message) {
		var order corenotify.Order
		if err := json.Unmarshal(m.Payload(), &order); err == nil {
			received <- order
		}
	}); token.Wait() && token.Error() != nil {
		t.Fatalf("subscribe: %v", token.Error())
	}

	n, err := NewPahoNotifier(Config{Broker: broker, ClientID: "dispatcher", QoS: 1})
	if err != nil {
		t.Fatalf("notifier: %v", err)
	}
	defer n.Close()

	events := []model.ScheduleEvent{
		{ID: "ev-1", Kind: model.EventDelivery, Ship: "mv-anna", BargeID: "barge-a", Product: "VLSFO", Quantity: 400, LocationID: "anchorage-1", Start: time.Now().UTC(), Duration: 2 * time.Hour},
	}
	if err := n.NotifyCommit(ctx, "run-e2e", events); err != nil {
		t.Fatalf("notify: %v", err)
	}

	select {
	case order := <-received:
		if order.BargeID != "barge-a" || len(order.Events) != 1 {
			t.Fatalf("unexpected order: %+v", order)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no order received")
	}
}
