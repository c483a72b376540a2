package main

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/IBM/sarama"

	"github.com/vladislavdragonenkov/storefront/internal/messaging/kafka"
)

type fakeClient struct {
	partitions []int32
	newest     int64
}

func (c *fakeClient) GetOffset(_ string, _ int32, at int64) (int64, error) {
	if at == sarama.OffsetOldest {
		return 0, nil
	}
	return c.newest, nil
}

func (c *fakeClient) Partitions(string) ([]int32, error) { return c.partitions, nil }

func (c *fakeClient) Close() error { return nil }

type fakePartitionConsumer struct {
	messages chan *sarama.ConsumerMessage
	errors   chan *sarama.ConsumerError
}

func (c *fakePartitionConsumer) Messages() <-chan *sarama.ConsumerMessage { return c.messages }

func (c *fakePartitionConsumer) Errors() <-chan *sarama.ConsumerError { return c.errors }

func (c *fakePartitionConsumer) Close() error { return nil }

type fakeConsumerSource struct {
	byPartition map[int32]*fakePartitionConsumer
}

func (s *fakeConsumerSource) ConsumePartition(_ string, partition int32, _ int64) (partitionConsumer, error) {
	return s.byPartition[partition], nil
}

func (s *fakeConsumerSource) Close() error { return nil }

type fakeProducer struct {
	sent []*sarama.ProducerMessage
}

func (p *fakeProducer) SendMessage(msg *sarama.ProducerMessage) (int32, int64, error) {
	p.sent = append(p.sent, msg)
	return 0, int64(len(p.sent)), nil
}

func (p *fakeProducer) Close() error { return nil }

func dlqMessage(t *testing.T, offset int64, eventType, aggregateID string) *sarama.ConsumerMessage {
	t.Helper()

	record, err := json.Marshal(map[string]any{
		"outbox_id":      "out-1",
		"aggregate_type": "order",
		"aggregate_id":   aggregateID,
		"event_type":     eventType,
		"payload":        json.RawMessage(`{"order_id":"` + aggregateID + `"}`),
		"publish_error":  "kafka: broker unreachable",
	})
	if err != nil {
		t.Fatalf("marshal dlq record: %v", err)
	}

	value, err := json.Marshal(map[string]any{
		"id":             "out-1",
		"aggregate_type": "order",
		"aggregate_id":   aggregateID,
		"event_type":     eventType,
		"payload":        json.RawMessage(record),
		"published_at":   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("marshal dlq envelope: %v", err)
	}

	return &sarama.ConsumerMessage{Offset: offset, Value: value}
}

func testConfig() config {
	return config{
		brokers:     []string{"broker:9092"},
		sourceTopic: "storefront.dlq",
		targetTopic: "storefront.order.events",
		limit:       10,
		idleTimeout: 100 * time.Millisecond,
	}
}

func newFakePartition(messages ...*sarama.ConsumerMessage) *fakePartitionConsumer {
	pc := &fakePartitionConsumer{
		messages: make(chan *sarama.ConsumerMessage, len(messages)),
		errors:   make(chan *sarama.ConsumerError, 1),
	}
	for _, msg := range messages {
		pc.messages <- msg
	}
	return pc
}

func headerValue(headers []sarama.RecordHeader, key string) (string, bool) {
	for _, header := range headers {
		if string(header.Key) == key {
			return string(header.Value), true
		}
	}
	return "", false
}

func TestBuildReplayMessage(t *testing.T) {
	msg := dlqMessage(t, 0, "order.placed", "order-1")

	replay, err := buildReplayMessage(msg, "storefront.dlq")
	if err != nil {
		t.Fatalf("buildReplayMessage failed: %v", err)
	}
	if replay.key != "order-1" {
		t.Fatalf("expected key order-1, got %s", replay.key)
	}

	var envelope kafka.EventEnvelope
	if err := json.Unmarshal(replay.value, &envelope); err != nil {
		t.Fatalf("decode replay envelope: %v", err)
	}
	if envelope.ID != "out-1" {
		t.Errorf("expected outbox id out-1, got %s", envelope.ID)
	}
	if envelope.EventType != "order.placed" {
		t.Errorf("expected event type order.placed, got %s", envelope.EventType)
	}
	if string(envelope.Payload) != `{"order_id":"order-1"}` {
		t.Errorf("unexpected payload: %s", envelope.Payload)
	}
	if envelope.PublishedAt.IsZero() {
		t.Error("expected PublishedAt to be set")
	}

	if got, ok := headerValue(replay.headers, kafka.HeaderRetryCount); !ok || got != "1" {
		t.Errorf("expected retry count header 1, got %q", got)
	}
	if got, ok := headerValue(replay.headers, kafka.HeaderOriginalTopic); !ok || got != "storefront.dlq" {
		t.Errorf("expected original topic header storefront.dlq, got %q", got)
	}
	if got, ok := headerValue(replay.headers, kafka.HeaderErrorMessage); !ok || got != "kafka: broker unreachable" {
		t.Errorf("expected error message header, got %q", got)
	}
	if _, ok := headerValue(replay.headers, kafka.HeaderFailedAt); !ok {
		t.Error("expected failed-at header to be set")
	}
}

func TestBuildReplayMessage_IncrementsRetryHeader(t *testing.T) {
	msg := dlqMessage(t, 0, "order.placed", "order-1")
	msg.Headers = []*sarama.RecordHeader{
		{Key: []byte(kafka.HeaderRetryCount), Value: []byte("2")},
	}

	replay, err := buildReplayMessage(msg, "storefront.dlq")
	if err != nil {
		t.Fatalf("buildReplayMessage failed: %v", err)
	}
	if got, ok := headerValue(replay.headers, kafka.HeaderRetryCount); !ok || got != "3" {
		t.Fatalf("expected retry count header 3, got %q", got)
	}
}

func TestBuildReplayMessage_Garbage(t *testing.T) {
	if _, err := buildReplayMessage(&sarama.ConsumerMessage{Value: []byte("not json")}, "storefront.dlq"); err == nil {
		t.Fatal("expected error for non-json value")
	}
	if _, err := buildReplayMessage(&sarama.ConsumerMessage{Value: []byte(`{"payload":{"event_type":""}}`)}, "storefront.dlq"); err == nil {
		t.Fatal("expected error for record without event_type")
	}
}

func TestProcessPartition_DryRun(t *testing.T) {
	messages := []*sarama.ConsumerMessage{
		dlqMessage(t, 0, "order.placed", "order-1"),
		{Offset: 1, Value: []byte("garbage")},
		dlqMessage(t, 2, "order.cancelled", "order-2"),
	}
	client := &fakeClient{newest: int64(len(messages))}
	source := &fakeConsumerSource{byPartition: map[int32]*fakePartitionConsumer{
		0: newFakePartition(messages...),
	}}

	stats, err := processPartition(context.Background(), testConfig(), client, source, nil, 0, 10)
	if err != nil {
		t.Fatalf("processPartition failed: %v", err)
	}
	if stats.processed != 3 {
		t.Errorf("expected 3 processed, got %d", stats.processed)
	}
	if stats.replayed != 2 {
		t.Errorf("expected 2 replay candidates, got %d", stats.replayed)
	}
	if stats.skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", stats.skipped)
	}
}

func TestProcessPartition_Execute(t *testing.T) {
	messages := []*sarama.ConsumerMessage{
		dlqMessage(t, 0, "order.placed", "order-1"),
	}
	client := &fakeClient{newest: 1}
	source := &fakeConsumerSource{byPartition: map[int32]*fakePartitionConsumer{
		0: newFakePartition(messages...),
	}}
	producer := &fakeProducer{}

	cfg := testConfig()
	cfg.execute = true

	stats, err := processPartition(context.Background(), cfg, client, source, producer, 0, 10)
	if err != nil {
		t.Fatalf("processPartition failed: %v", err)
	}
	if stats.replayed != 1 {
		t.Fatalf("expected 1 replayed, got %d", stats.replayed)
	}
	if len(producer.sent) != 1 {
		t.Fatalf("expected 1 produced message, got %d", len(producer.sent))
	}
	if producer.sent[0].Topic != cfg.targetTopic {
		t.Errorf("expected topic %s, got %s", cfg.targetTopic, producer.sent[0].Topic)
	}
	if got, ok := headerValue(producer.sent[0].Headers, kafka.HeaderRetryCount); !ok || got != "1" {
		t.Errorf("expected retry count header on produced message, got %q", got)
	}
}

func TestRunReplay_ExecuteRequiresProducer(t *testing.T) {
	cfg := testConfig()
	cfg.execute = true

	err := runReplay(context.Background(), cfg, &fakeClient{}, &fakeConsumerSource{}, nil)
	if err == nil {
		t.Fatal("expected error when producer is missing in execute mode")
	}
}

func TestRunReplay_RespectsLimit(t *testing.T) {
	messages := []*sarama.ConsumerMessage{
		dlqMessage(t, 0, "order.placed", "order-1"),
		dlqMessage(t, 1, "order.placed", "order-2"),
		dlqMessage(t, 2, "order.placed", "order-3"),
	}
	client := &fakeClient{partitions: []int32{0}, newest: int64(len(messages))}
	source := &fakeConsumerSource{byPartition: map[int32]*fakePartitionConsumer{
		0: newFakePartition(messages...),
	}}

	cfg := testConfig()
	cfg.limit = 2

	if err := runReplay(context.Background(), cfg, client, source, nil); err != nil {
		t.Fatalf("runReplay failed: %v", err)
	}
}

func TestParseBrokers(t *testing.T) {
	got := parseBrokers(" broker1:9092, ,broker2:9092 ")
	want := []string{"broker1:9092", "broker2:9092"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("parseBrokers = %v, want %v", got, want)
	}
	if len(parseBrokers("")) != 0 {
		t.Fatal("expected no brokers for empty input")
	}
}
