package resp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadCommand(t *testing.T) {
	input := "*3\r\n$3\r\nSET\r\n$3\r\nkey\r\n$5\r\nvalue\r\n"
	r := NewReader(bytes.NewBufferString(input))

	argv, err := r.ReadCommand()
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("SET"), []byte("key"), []byte("value")}, argv)
}

func TestReadCommandNestedReads(t *testing.T) {
	input := "*1\r\n$4\r\nPING\r\n*2\r\n$4\r\nECHO\r\n$2\r\nhi\r\n"
	r := NewReader(bytes.NewBufferString(input))

	argv, err := r.ReadCommand()
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("PING")}, argv)

	argv, err = r.ReadCommand()
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("ECHO"), []byte("hi")}, argv)
}

func TestReadCommandProtocolError(t *testing.T) {
	input := "+not-an-array\r\n"
	r := NewReader(bytes.NewBufferString(input))

	_, err := r.ReadCommand()
	require.ErrorIs(t, err, ErrProtocol)
}

func TestWriteValueKinds(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"simple", SimpleString("OK"), "+OK\r\n"},
		{"error", ErrorReply("ERR boom"), "-ERR boom\r\n"},
		{"integer", Integer(11), ":11\r\n"},
		{"bulk", BulkString("bar"), "$3\r\nbar\r\n"},
		{"null bulk", NullBulk(), "$-1\r\n"},
		{"null array", NullArray(), "*-1\r\n"},
		{"array", Array(BulkString("q"), BulkString("x")), "*2\r\n$1\r\nq\r\n$1\r\nx\r\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Encode(tc.v)
			require.Equal(t, tc.want, string(got))
		})
	}
}

func TestCommandArrayRoundTrip(t *testing.T) {
	v := CommandArray("SET", "a", "10")
	encoded := Encode(v)

	r := NewReader(bytes.NewBuffer(encoded))
	argv, err := r.ReadCommand()
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("SET"), []byte("a"), []byte("10")}, argv)
}
