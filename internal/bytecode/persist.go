package bytecode

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/dchest/siphash"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/csh1668/pyhyeon/internal/object"
)

func init() {
	gob.Register(&object.StringData{})
	gob.Register(&object.ListData{})
	gob.Register(&object.DictData{})
	gob.Register(&object.UserClassData{})
	gob.Register(&object.UserInstanceData{})
	gob.Register(&object.BuiltinClassData{})
	gob.Register(&object.BuiltinInstanceData{})
	gob.Register(&object.UserFunctionData{})
	gob.Register(&object.RangeState{})
	gob.Register(&object.ListIteratorState{})
	gob.Register(&object.DictIteratorState{})
	gob.Register(&object.MapIteratorState{})
	gob.Register(&object.FilterIteratorState{})
}

// formatVersion is bumped whenever the wire shape of payload changes;
// Load rejects any mismatch before touching the decoded module (§6.1:
// "Any versioning scheme between producer and consumer must reject
// mismatched modules before executing").
const formatVersion uint32 = 1

// checksumKey is a fixed siphash key: the checksum's purpose is
// detecting truncation/corruption and format drift, not authentication,
// so a fixed key (rather than a per-module secret) is correct here.
var checksumKey0, checksumKey1 uint64 = 0x70796879656f6e00, 0x62797465636f6465

// payload is the on-wire shape of a Module. Types is deliberately
// excluded: "the type table is not persisted; it is reconstructed from
// the fixed builtin order on load" (§6.1).
type payload struct {
	Consts     []object.Value
	StringPool []string
	NumGlobals int
	Symbols    []string
	Functions  []*FunctionCode
	Classes    []*object.ClassDef
}

// Save serializes m to w: a 4-byte version, a 16-byte BuildID (a fresh
// uuid stamped at save time, surfaced for diagnostics), an 8-byte
// siphash checksum of the compressed body, then the zstd-compressed gob
// encoding of the payload.
func Save(m *Module, w io.Writer) error {
	var gobBuf bytes.Buffer
	if err := gob.NewEncoder(&gobBuf).Encode(payloadOf(m)); err != nil {
		return fmt.Errorf("bytecode: encode: %w", err)
	}

	var body bytes.Buffer
	zw, err := zstd.NewWriter(&body)
	if err != nil {
		return fmt.Errorf("bytecode: zstd writer: %w", err)
	}
	if _, err := zw.Write(gobBuf.Bytes()); err != nil {
		zw.Close()
		return fmt.Errorf("bytecode: compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("bytecode: compress: %w", err)
	}

	checksum := siphash.Hash(checksumKey0, checksumKey1, body.Bytes())
	buildID := uuid.New()

	var header [4 + 16 + 8]byte
	binary.BigEndian.PutUint32(header[0:4], formatVersion)
	copy(header[4:20], buildID[:])
	binary.BigEndian.PutUint64(header[20:28], checksum)

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err = w.Write(body.Bytes())
	return err
}

// Load reconstructs a Module from r, rejecting a mismatched version or
// a corrupted body before any of the payload is executed.
func Load(r io.Reader) (*Module, error) {
	var header [4 + 16 + 8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("bytecode: truncated header: %w", err)
	}
	version := binary.BigEndian.Uint32(header[0:4])
	if version != formatVersion {
		return nil, fmt.Errorf("bytecode: unsupported format version %d (want %d)", version, formatVersion)
	}
	wantChecksum := binary.BigEndian.Uint64(header[20:28])

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("bytecode: read body: %w", err)
	}
	if got := siphash.Hash(checksumKey0, checksumKey1, body); got != wantChecksum {
		return nil, fmt.Errorf("bytecode: checksum mismatch: module is corrupt or truncated")
	}

	zr, err := zstd.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("bytecode: zstd reader: %w", err)
	}
	defer zr.Close()

	var p payload
	if err := gob.NewDecoder(zr).Decode(&p); err != nil {
		return nil, fmt.Errorf("bytecode: decode: %w", err)
	}
	return moduleFromPayload(&p), nil
}

func payloadOf(m *Module) *payload {
	return &payload{
		Consts:     m.Consts,
		StringPool: m.StringPool,
		NumGlobals: len(m.Globals),
		Symbols:    m.Symbols,
		Functions:  m.Functions,
		Classes:    m.Classes,
	}
}

// moduleFromPayload rebuilds a Module, resetting every global to
// absent: "globals (all absent initially)" holds for a freshly loaded
// module exactly as it does for a freshly compiled one.
func moduleFromPayload(p *payload) *Module {
	m := &Module{
		Consts:      p.Consts,
		StringPool:  p.StringPool,
		Globals:     make([]GlobalSlot, p.NumGlobals),
		Symbols:     p.Symbols,
		Functions:   p.Functions,
		Classes:     p.Classes,
		Types:       object.NewBuiltinTypeTable(),
		stringIndex: make(map[string]int, len(p.StringPool)),
		symbolIndex: make(map[string]int, len(p.Symbols)),
	}
	for i, s := range m.StringPool {
		m.stringIndex[s] = i
	}
	for i, s := range m.Symbols {
		m.symbolIndex[s] = i
	}
	for i, class := range m.Classes {
		for len(m.Types) < object.TypeUserBase+i {
			m.Types = append(m.Types, nil)
		}
		m.Types = append(m.Types, &object.TypeDef{Name: class.Name, Methods: class.Methods})
	}
	return m
}
