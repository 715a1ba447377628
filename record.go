// Record format and type definitions.
//
// Every record in a generation file is a JSON object: {"t":"set",...}
// or {"t":"rm",...}, appended back to back with no separator. JSON is
// self-delimiting, so a streaming decoder recovers record boundaries
// without a length prefix, and the byte offsets it reports become the
// pointers the in-memory index stores.
package kiln

import (
	json "github.com/goccy/go-json"
)

// Command type tags. These appear as the "t" value of every record.
const (
	cmdSet    = "set"
	cmdRemove = "rm"
)

// command is a single persisted operation. A set record asserts that
// Key now maps to Value; a remove record asserts that Key has no
// mapping. Value is omitted from remove records.
type command struct {
	Type  string `json:"t"`
	Key   string `json:"k"`
	Value string `json:"v,omitempty"`
}

func setCommand(key, value string) command {
	return command{Type: cmdSet, Key: key, Value: value}
}

func removeCommand(key string) command {
	return command{Type: cmdRemove, Key: key}
}

// pointer locates one encoded record: the generation file it lives in,
// its absolute byte offset, and its byte length. The index maps each
// live key to the pointer of its latest set record.
type pointer struct {
	gen uint64
	pos int64
	len int64
}

// encodeCommand serialises a command to its on-disk form.
func encodeCommand(cmd command) ([]byte, error) {
	return json.Marshal(cmd)
}

// decodeCommand parses the exact byte range of one record. Anything
// that is not a well-formed command is corruption: the bytes came from
// a pointer the index vouches for.
func decodeCommand(data []byte) (command, error) {
	var cmd command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return command{}, ErrCorruptRecord
	}
	if cmd.Key == "" {
		return command{}, ErrCorruptRecord
	}
	switch cmd.Type {
	case cmdSet, cmdRemove:
		return cmd, nil
	}
	return command{}, ErrCorruptRecord
}
