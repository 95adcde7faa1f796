package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/conf"
)

const sampleYaml = `
logger:
  format: json
  level: debug
indexer:
  workers: 4
sink:
  type: kafka
  kafka:
    brokers: 127.0.0.1:9092
grpc:
  endpoint: grpc.example.com:443
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grpc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYaml), 0o644))

	var c GrpcConfig
	require.NoError(t, conf.Load(path, &c))

	assert.Equal(t, "json", c.LogConf.Format)
	assert.Equal(t, "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", c.IndexerConf.TargetProgram)
	assert.True(t, c.IndexerConf.Compat.LegacyPositions)
	assert.Equal(t, 4, c.IndexerConf.Workers)
	assert.Equal(t, "spl-token-events", c.SinkConf.Kafka.Topics.Event)
	assert.Equal(t, 8, c.SinkConf.Kafka.Partitions.Event)
	assert.Equal(t, 30, c.Grpc.BlockRecvTimeoutSec)
	assert.NoError(t, c.Validate())

	opt := c.SinkConf.Kafka.ToKafkaOption()
	require.Len(t, opt.Topics, 1)
	assert.Equal(t, "spl-token-events", opt.Topics[0].Topic)
}

func TestValidate(t *testing.T) {
	var c GrpcConfig
	c.IndexerConf.TargetProgram = "bad"
	c.SinkConf.Type = "stdout"
	assert.Error(t, c.Validate())

	c.IndexerConf.TargetProgram = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	assert.NoError(t, c.Validate())

	c.SinkConf.Type = "nats"
	assert.Error(t, c.Validate())
	c.SinkConf.Nats.URL = "nats://127.0.0.1:4222"
	assert.NoError(t, c.Validate())

	c.SinkConf.Type = "file"
	assert.Error(t, c.Validate())
}
