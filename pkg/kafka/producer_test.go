package kafka

import (
	"testing"

	kafkago "github.com/segmentio/kafka-go"
)

func TestNewProducerAppliesConfig(t *testing.T) {
	p := NewProducer(Config{
		Brokers:      []string{"localhost:9092"},
		Topic:        "predictions",
		RequiredAcks: -1,
		Compression:  "snappy",
		MaxAttempts:  5,
	})
	defer p.Close()

	if p.writer.RequiredAcks != kafkago.RequireAll {
		t.Fatalf("RequiredAcks = %v, want RequireAll", p.writer.RequiredAcks)
	}
	if p.writer.Compression != kafkago.Snappy {
		t.Fatalf("Compression = %v, want snappy", p.writer.Compression)
	}
	if p.writer.MaxAttempts != 5 {
		t.Fatalf("MaxAttempts = %d, want 5", p.writer.MaxAttempts)
	}
}

func TestNewProducerDefaults(t *testing.T) {
	p := NewProducer(Config{Brokers: []string{"localhost:9092"}, Topic: "predictions"})
	defer p.Close()

	if p.writer.RequiredAcks != kafkago.RequireOne {
		t.Fatalf("RequiredAcks = %v, want RequireOne", p.writer.RequiredAcks)
	}
	if p.writer.Compression != 0 {
		t.Fatalf("Compression = %v, want none", p.writer.Compression)
	}
	if p.writer.MaxAttempts != 3 {
		t.Fatalf("MaxAttempts = %d, want 3", p.writer.MaxAttempts)
	}
}

func TestCompressionCodec(t *testing.T) {
	cases := []struct {
		name string
		want kafkago.Compression
	}{
		{"gzip", kafkago.Gzip},
		{"Snappy", kafkago.Snappy},
		{"lz4", kafkago.Lz4},
		{"zstd", kafkago.Zstd},
		{"", 0},
		{"bogus", 0},
	}
	for _, c := range cases {
		if got := compressionCodec(c.name); got != c.want {
			t.Fatalf("compressionCodec(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}
