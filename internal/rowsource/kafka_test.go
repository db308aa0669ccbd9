package rowsource

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
)

type fakeReader struct {
	msgs   []kafka.Message
	next   int
	closed bool
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if f.next >= len(f.msgs) {
		return kafka.Message{}, errors.New("no more messages")
	}
	m := f.msgs[f.next]
	f.next++
	return m, nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func TestKafkaSource_BoundedDrain(t *testing.T) {
	fr := &fakeReader{msgs: []kafka.Message{
		{Offset: 0, Value: []byte(`{"주문번호":"O1","총 주문 금액":50000}`)},
		{Offset: 1, Value: []byte(`{"주문번호":"O2","총 주문 금액":"30,000"}`)},
		{Offset: 2, Value: []byte(`{"주문번호":"O3"}`)}, // past the watermark
	}}
	src := NewKafkaSourceWith(fr, 1)

	rows, err := src.ReadAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("drain must stop at the start watermark, got %d rows", len(rows))
	}
	if rows[0]["주문번호"] != "O1" || rows[0]["총 주문 금액"] != "50000" {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1]["총 주문 금액"] != "30,000" {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
	if !fr.closed {
		t.Fatalf("reader should be closed after the drain")
	}
}

func TestKafkaSource_BadMessage(t *testing.T) {
	fr := &fakeReader{msgs: []kafka.Message{
		{Offset: 0, Value: []byte(`not json`)},
	}}
	src := NewKafkaSourceWith(fr, 0)
	if _, err := src.ReadAll(context.Background()); err == nil {
		t.Fatalf("undecodable message should fail the drain")
	}
}

func TestDecodeRow_Flattening(t *testing.T) {
	row, err := decodeRow([]byte(`{"s":"x","n":12.5,"i":3,"b":true,"z":null}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Row{"s": "x", "n": "12.5", "i": "3", "b": "true", "z": ""}
	for k, v := range want {
		if row[k] != v {
			t.Fatalf("row[%q] = %q, want %q", k, row[k], v)
		}
	}
}
