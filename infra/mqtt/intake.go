package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	coremon "github.com/kilianp07/dockyard/core/monitoring"
	"github.com/kilianp07/dockyard/core/model"
	"github.com/kilianp07/dockyard/infra/logger"
)

// Allocator is the part of the docking allocator the intake drives.
type Allocator interface {
	ProcessDockingRequest(ctx context.Context, req model.DockingRequest) (model.AllocationResult, error)
	ClearSchedule(ctx context.Context) error
	Schedule() model.ScheduleView
}

// StatusError marks a request refused as invalid input.
const StatusError = "error"

// Response is published on <result_prefix>/<mission_id> for every request.
type Response struct {
	MissionID    string       `json:"mission_id"`
	Status       string       `json:"status"`
	AssignedPort model.PortID `json:"assigned_port,omitempty"`
	Reason       model.Reason `json:"reason,omitempty"`
	Error        string       `json:"error,omitempty"`
}

// NewResponse builds the wire response for an allocator outcome.
func NewResponse(missionID string, res model.AllocationResult, err error) Response {
	if err != nil {
		return Response{MissionID: missionID, Status: StatusError, Error: err.Error()}
	}
	return Response{
		MissionID:    missionID,
		Status:       string(res.Status),
		AssignedPort: res.AssignedPort,
		Reason:       res.Reason,
	}
}

// ClearResponse acknowledges a schedule reset on the clear topic's reply.
type ClearResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

const (
	healthOnline  = "online"
	healthOffline = "offline"
)

func healthPayload(status string) []byte {
	b, _ := json.Marshal(struct {
		Status string `json:"status"`
		Time   string `json:"time"`
	}{Status: status, Time: model.FormatTimestamp(time.Now())})
	return b
}

// Intake feeds docking requests received over MQTT to the allocator and
// publishes the outcomes.
type Intake struct {
	cfg    Config
	alloc  Allocator
	logger logger.Logger

	mu  sync.Mutex
	ctx context.Context
	pub *publisher
}

// NewIntake prepares an intake; Start connects it.
func NewIntake(cfg Config, alloc Allocator, log logger.Logger) (*Intake, error) {
	if alloc == nil {
		return nil, errors.New("mqtt: nil allocator provided to NewIntake")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.New("mqtt_intake")
	}
	return &Intake{cfg: cfg, alloc: alloc, logger: log, ctx: context.Background()}, nil
}

// Start connects to the broker. Handlers run with ctx until Stop.
func (in *Intake) Start(ctx context.Context) error {
	opts, err := NewClientOptions(in.cfg)
	if err != nil {
		return err
	}
	in.mu.Lock()
	in.ctx = ctx
	in.mu.Unlock()

	opts.OnConnect = func(c paho.Client) {
		in.logger.Infof("MQTT connected, listening on %s", in.cfg.RequestTopic)
		subs := []struct {
			topic string
			h     paho.MessageHandler
		}{
			{in.cfg.RequestTopic, in.onRequest},
			{in.cfg.ClearTopic, in.onClear},
			{in.cfg.ScheduleRequestTopic, in.onScheduleRequest},
		}
		for _, s := range subs {
			if err := subscribe(c, s.topic, in.cfg.qos("request"), s.h); err != nil {
				in.logger.Errorf("%v", err)
				coremon.CaptureException(err, map[string]string{"module": "mqtt", "topic": s.topic})
			}
		}
		in.publishHealth(healthOnline)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		in.logger.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		in.logger.Warnf("reconnecting to MQTT broker")
	}

	c := newMQTTClient(opts)
	in.mu.Lock()
	in.pub = &publisher{
		cli:        c,
		logger:     in.logger,
		maxRetries: in.cfg.MaxRetries,
		backoff:    time.Duration(in.cfg.BackoffMS) * time.Millisecond,
	}
	in.mu.Unlock()
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// Stop publishes the offline status and disconnects.
func (in *Intake) Stop() {
	pub := in.publisher()
	if pub == nil || !pub.cli.IsConnected() {
		return
	}
	in.publishHealth(healthOffline)
	pub.cli.Disconnect(250)
}

func (in *Intake) publisher() *publisher {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.pub
}

func (in *Intake) handlerCtx() context.Context {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.ctx
}

// ResultTopic returns the topic the outcome for missionID is published on.
func (in *Intake) ResultTopic(missionID string) string {
	return in.cfg.ResultPrefix + "/" + missionID
}

func (in *Intake) onRequest(_ paho.Client, msg paho.Message) {
	var req model.DockingRequest
	if err := json.Unmarshal(msg.Payload(), &req); err != nil {
		in.logger.Warnf("invalid docking request payload: %v", err)
		in.respond(uuid.NewString(), Response{Status: StatusError, Error: "decode request: " + err.Error()}, req)
		return
	}
	res, err := in.alloc.ProcessDockingRequest(in.handlerCtx(), req)
	in.respond(resultID(req.MissionID), NewResponse(req.MissionID, res, err), req)
}

// resultID returns the topic level results for missionID are published
// under. Ids that are empty or would not form a single valid topic level get
// a generated one; the payload still carries the original mission id.
func resultID(missionID string) string {
	if missionID == "" || strings.ContainsAny(missionID, "+#/") {
		return uuid.NewString()
	}
	return missionID
}

func (in *Intake) respond(id string, resp Response, req model.DockingRequest) {
	payload, err := json.Marshal(resp)
	if err != nil {
		in.logger.Errorf("encode response: %v", err)
		return
	}
	pub := in.publisher()
	if pub == nil {
		return
	}
	if err := pub.publish(in.ResultTopic(id), in.cfg.qos("result"), false, payload); err != nil {
		coremon.CaptureRequestError(err, "mqtt_intake", req)
	}
}

func (in *Intake) onClear(_ paho.Client, _ paho.Message) {
	resp := ClearResponse{Status: "cleared"}
	if err := in.alloc.ClearSchedule(in.handlerCtx()); err != nil {
		resp = ClearResponse{Status: StatusError, Error: err.Error()}
	}
	in.publishJSON(in.cfg.ClearTopic+"/result", resp, false)
}

func (in *Intake) onScheduleRequest(_ paho.Client, _ paho.Message) {
	in.publishJSON(in.cfg.ScheduleTopic, in.alloc.Schedule(), true)
}

func (in *Intake) publishJSON(topic string, v any, retained bool) {
	payload, err := json.Marshal(v)
	if err != nil {
		in.logger.Errorf("encode %s: %v", topic, err)
		return
	}
	pub := in.publisher()
	if pub == nil {
		return
	}
	if err := pub.publish(topic, in.cfg.qos("control"), retained, payload); err != nil {
		coremon.CaptureException(err, map[string]string{"module": "mqtt", "topic": topic})
	}
}

func (in *Intake) publishHealth(status string) {
	pub := in.publisher()
	if pub == nil {
		return
	}
	if err := pub.publish(in.cfg.HealthTopic, 1, true, healthPayload(status)); err != nil {
		in.logger.Warnf("health publish: %v", err)
	}
}
