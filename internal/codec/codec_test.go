package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netlab/internal/domain"
)

func sampleTopology() *domain.Topology {
	topo := domain.NewTopology()
	topo.Services["host1"] = domain.Service{
		ContainerName: "host1",
		Image:         "alpine",
		Command:       "ping -c 4 10.0.1.2",
		Networks: map[string]domain.ServiceNetwork{
			"net1": {IPv4Address: "10.0.1.1"},
			"net2": {IPv4Address: "10.0.2.1"},
		},
	}
	topo.Services["host2"] = domain.Service{
		ContainerName: "host2",
		Image:         "alpine",
		Command:       domain.DefaultCommand,
		Networks: map[string]domain.ServiceNetwork{
			"net1": {IPv4Address: "10.0.1.2"},
		},
	}
	topo.Networks["net1"] = domain.NewBridgeNetwork("10.0.1.0/24", "10.0.1.100")
	topo.Networks["net2"] = domain.NewBridgeNetwork("10.0.2.0/24", "10.0.2.100")
	return topo
}

func TestComposeCodecFormat(t *testing.T) {
	assert.Equal(t, "compose", NewComposeCodec().Format())
	assert.Equal(t, "json", NewJSONCodec().Format())
}

func TestComposeCodecExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewComposeCodec().Export(sampleTopology(), &buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `version: "2.4"`), "version must stay a string: %s", out)
	assert.Contains(t, out, "services:\n")
	assert.Contains(t, out, "networks:\n")
	assert.Contains(t, out, "container_name: host1")
	assert.Contains(t, out, "image: alpine")
	assert.Contains(t, out, "ipv4_address: 10.0.1.1")
	assert.Contains(t, out, "driver: bridge")
	assert.Contains(t, out, "subnet: 10.0.1.0/24")
	assert.Contains(t, out, "gateway: 10.0.1.100")
}

func TestComposeCodecExportIsStable(t *testing.T) {
	var first, second bytes.Buffer
	require.NoError(t, NewComposeCodec().Export(sampleTopology(), &first))
	require.NoError(t, NewComposeCodec().Export(sampleTopology(), &second))
	assert.Equal(t, first.String(), second.String())
}

func TestComposeCodecRoundTrip(t *testing.T) {
	codec := NewComposeCodec()
	original := sampleTopology()

	var buf bytes.Buffer
	require.NoError(t, codec.Export(original, &buf))

	parsed, err := codec.Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestComposeCodecRoundTripEmpty(t *testing.T) {
	codec := NewComposeCodec()

	var buf bytes.Buffer
	require.NoError(t, codec.Export(domain.NewTopology(), &buf))

	parsed, err := codec.Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, domain.NewTopology(), parsed)
}

func TestComposeCodecParseHandwritten(t *testing.T) {
	input := `
version: '2.4'
networks:
  net1:
    driver: bridge
    ipam:
      config:
      - gateway: 10.0.1.100
        subnet: 10.0.1.0/24
services:
  host1:
    command: tail -f /dev/null
    image: alpine
    networks:
      net1:
        ipv4_address: 10.0.1.1
`
	topo, err := NewComposeCodec().Parse(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "2.4", topo.Version)
	assert.Equal(t, "10.0.1.1", topo.Services["host1"].Networks["net1"].IPv4Address)
	assert.Equal(t, "", topo.Services["host1"].ContainerName)
	assert.Equal(t, domain.NewBridgeNetwork("10.0.1.0/24", "10.0.1.100"), topo.Networks["net1"])
}

func TestComposeCodecParseInvalid(t *testing.T) {
	_, err := NewComposeCodec().Parse(strings.NewReader("services: [unterminated"))
	assert.Error(t, err)
}

func TestJSONCodecRoundTrip(t *testing.T) {
	codec := NewJSONCodec()
	original := sampleTopology()

	var buf bytes.Buffer
	require.NoError(t, codec.Export(original, &buf))
	assert.Contains(t, buf.String(), `"ipv4_address": "10.0.1.1"`)

	parsed, err := codec.Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestJSONCodecEncodeNullFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONCodec().Encode(domain.PingResult{}, &buf))

	out := buf.String()
	assert.Contains(t, out, `"transmitted": null`)
	assert.Contains(t, out, `"rtt_mdev": null`)
	assert.NotContains(t, out, "time_ms")
}
