package rowsource

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaSource drains an order-export topic (partition 0) up to the offset
// observed at start and converts each JSON message into a Row. This is a
// bounded batch read: messages published after the drain begins belong to
// the next analysis run.
type KafkaSource struct {
	brokers []string
	topic   string

	reader     messageReader
	lastOffset int64
}

// messageReader abstracts kafka.Reader for testability.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

func NewKafkaSource(brokers []string, topic string) *KafkaSource {
	return &KafkaSource{brokers: brokers, topic: topic, lastOffset: -1}
}

// NewKafkaSourceWith is only for tests to inject a fake reader.
func NewKafkaSourceWith(r messageReader, lastOffset int64) *KafkaSource {
	return &KafkaSource{reader: r, lastOffset: lastOffset}
}

func (s *KafkaSource) ReadAll(ctx context.Context) ([]Row, error) {
	rd := s.reader
	last := s.lastOffset
	if rd == nil {
		var err error
		last, err = s.headOffset(ctx)
		if err != nil {
			return nil, err
		}
		if last < 0 {
			return nil, nil // empty topic
		}
		rd = kafka.NewReader(kafka.ReaderConfig{
			Brokers:   s.brokers,
			Topic:     s.topic,
			Partition: 0,
			MinBytes:  1,
			MaxBytes:  10e6,
		})
	}
	defer rd.Close()

	var rows []Row
	for {
		m, err := rd.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return nil, fmt.Errorf("read kafka: %w", err)
		}
		row, err := decodeRow(m.Value)
		if err != nil {
			return nil, fmt.Errorf("decode message at offset %d: %w", m.Offset, err)
		}
		rows = append(rows, row)
		if m.Offset >= last {
			break
		}
	}
	return rows, nil
}

// headOffset returns the last produced offset (high watermark - 1) of
// partition 0, or -1 when the topic is empty.
func (s *KafkaSource) headOffset(ctx context.Context) (int64, error) {
	dctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	conn, err := kafka.DialLeader(dctx, "tcp", s.brokers[0], s.topic, 0)
	if err != nil {
		return -1, fmt.Errorf("dial leader: %w", err)
	}
	defer conn.Close()
	off, err := conn.ReadLastOffset()
	if err != nil {
		return -1, fmt.Errorf("read last offset: %w", err)
	}
	return off - 1, nil
}

// decodeRow flattens one JSON export record into string-valued cells.
func decodeRow(value []byte) (Row, error) {
	var obj map[string]any
	if err := json.Unmarshal(value, &obj); err != nil {
		return nil, err
	}
	row := make(Row, len(obj))
	for k, v := range obj {
		switch t := v.(type) {
		case nil:
			row[k] = ""
		case string:
			row[k] = t
		case float64:
			row[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			row[k] = strconv.FormatBool(t)
		default:
			b, _ := json.Marshal(t)
			row[k] = string(b)
		}
	}
	return row, nil
}
