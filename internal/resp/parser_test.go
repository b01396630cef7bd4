package resp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommandComplete(t *testing.T) {
	buf := []byte("*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n")
	cmd, n, err := ParseCommand(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, "GET", cmd.Name())
	assert.Equal(t, [][]byte{[]byte("GET"), []byte("foo")}, cmd.Args)
}

func TestParseCommandIncomplete(t *testing.T) {
	buf := []byte("*2\r\n$3\r\nGET\r\n$3\r\nfo")
	_, _, err := ParseCommand(buf)
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestParseCommandCaseInsensitiveName(t *testing.T) {
	buf := []byte("*1\r\n$4\r\nping\r\n")
	cmd, _, err := ParseCommand(buf)
	require.NoError(t, err)
	assert.Equal(t, "PING", cmd.Name())
}

func TestParseCommandInvalidTag(t *testing.T) {
	_, _, err := ParseCommand([]byte("+OK\r\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseCommandNullBulkArg(t *testing.T) {
	buf := []byte("*2\r\n$3\r\nGET\r\n$-1\r\n")
	cmd, n, err := ParseCommand(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Nil(t, cmd.Args[1])
}

func TestParsePipelinedCommandsConsumeExactBytes(t *testing.T) {
	first := []byte("*1\r\n$4\r\nPING\r\n")
	second := []byte("*1\r\n$4\r\nPING\r\n")
	buf := append(append([]byte{}, first...), second...)

	_, n1, err := ParseCommand(buf)
	require.NoError(t, err)
	require.Equal(t, len(first), n1)

	_, n2, err := ParseCommand(buf[n1:])
	require.NoError(t, err)
	require.Equal(t, len(second), n2)
}

func TestEncodeEveryReplyKindNonEmpty(t *testing.T) {
	cases := []Reply{
		OK(),
		SimpleString("PONG"),
		Err("wrong number of arguments"),
		WrongType(),
		Integer(42),
		Integer(-7),
		BulkString("bar"),
		NilBulk(),
		NilArray(),
		Array([]Reply{Integer(1), BulkString("x"), NilBulk()}),
	}
	for _, r := range cases {
		encoded := Encode(r)
		assert.NotEmpty(t, encoded)
	}
}

func TestEncodeLiteralWire(t *testing.T) {
	assert.Equal(t, "+OK\r\n", string(Encode(OK())))
	assert.Equal(t, "-WRONGTYPE Operation against a key holding the wrong kind of value\r\n", string(Encode(WrongType())))
	assert.Equal(t, "$3\r\nbar\r\n", string(Encode(BulkString("bar"))))
	assert.Equal(t, "$-1\r\n", string(Encode(NilBulk())))
	assert.Equal(t, ":1\r\n", string(Encode(Integer(1))))
	assert.Equal(t, "*-1\r\n", string(Encode(NilArray())))
	assert.Equal(t, "*0\r\n", string(Encode(Array(nil))))
}
