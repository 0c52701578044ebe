package rnacode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
)

// Container is a persisted code word with everything needed to decode it except
// the grammar and, for static models, the probability table.
//
// Layout (little endian):
//
//	0   2  magic "RG"
//	2   1  version
//	3   1  backend
//	4   1  model kind
//	5   3  reserved, zero
//	8   4  scale (integer backend)
//	12  4  code length in bits
//	16  4  compressed header length H
//	20  H  xz compressed header
//	20+H   code bytes, most significant bit first, zero padded
//
// The decompressed header holds the uvarint length of the grammar name, the
// name, the BLAKE3 digest of the molecule and the uvarint count of rule counts
// followed by one uvarint per rule (semi-adaptive models only).
type Container struct {
	Backend     Backend
	Model       ModelKind
	Scale       uint32
	GrammarName string
	Digest      [digestSize]byte
	Counts      RuleCounts
	Code        Bits
}

// Digest returns the BLAKE3 digest identifying a molecule
func Digest(rna RNA) [digestSize]byte {
	return blake3.Sum256([]byte(rna.Primary + "\n" + rna.Structure))
}

// WriteContainer serializes c to w
func WriteContainer(w io.Writer, c *Container) error {
	var header bytes.Buffer
	header.Write(binary.AppendUvarint(nil, uint64(len(c.GrammarName))))
	header.WriteString(c.GrammarName)
	header.Write(c.Digest[:])
	header.Write(binary.AppendUvarint(nil, uint64(len(c.Counts))))
	for _, n := range c.Counts {
		header.Write(binary.AppendUvarint(nil, n))
	}

	var compressed bytes.Buffer
	xw, err := xz.NewWriter(&compressed)
	if err != nil {
		return fmt.Errorf("failed to create xz writer: %w", err)
	}
	if _, err := xw.Write(header.Bytes()); err != nil {
		return fmt.Errorf("failed to compress header: %w", err)
	}
	if err := xw.Close(); err != nil {
		return fmt.Errorf("failed to compress header: %w", err)
	}

	fixed := make([]byte, fixedHeaderSize)
	copy(fixed[0:2], ContainerMagic[:])
	fixed[2] = ContainerVersion
	fixed[3] = byte(c.Backend)
	fixed[4] = byte(c.Model)
	binary.LittleEndian.PutUint32(fixed[8:12], c.Scale)
	binary.LittleEndian.PutUint32(fixed[12:16], uint32(c.Code.Len()))
	binary.LittleEndian.PutUint32(fixed[16:20], uint32(compressed.Len()))

	if _, err := w.Write(fixed); err != nil {
		return err
	}
	if _, err := w.Write(compressed.Bytes()); err != nil {
		return err
	}
	_, err = w.Write(c.Code.Bytes())
	return err
}

// ReadContainer parses a container from r
func ReadContainer(r io.Reader) (*Container, error) {
	fixed := make([]byte, fixedHeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		return nil, fmt.Errorf("failed to read fixed header: %w", err)
	}
	if fixed[0] != ContainerMagic[0] || fixed[1] != ContainerMagic[1] {
		return nil, errorf(CodeBadContainer, "invalid magic number")
	}
	if fixed[2] != ContainerVersion {
		return nil, errorf(CodeBadContainer, "unsupported container version %d", fixed[2])
	}

	c := &Container{
		Backend: Backend(fixed[3]),
		Model:   ModelKind(fixed[4]),
		Scale:   binary.LittleEndian.Uint32(fixed[8:12]),
	}
	switch c.Backend {
	case BackendExact, BackendInteger:
	default:
		return nil, errorf(CodeBadContainer, "unknown backend %d", fixed[3])
	}
	switch c.Model {
	case ModelStatic, ModelAdaptive, ModelSemiAdaptive:
	default:
		return nil, errorf(CodeBadContainer, "unknown model kind %d", fixed[4])
	}
	codeBits := binary.LittleEndian.Uint32(fixed[12:16])
	headerSize := binary.LittleEndian.Uint32(fixed[16:20])

	if headerSize > maxHeaderSize {
		return nil, errorf(CodeBadContainer, "header of %d bytes exceeds %d", headerSize, maxHeaderSize)
	}
	compressed, err := readSection(r, int64(headerSize), "compressed header")
	if err != nil {
		return nil, err
	}
	xr, err := xz.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("failed to create xz reader: %w", err)
	}
	header, err := io.ReadAll(io.LimitReader(xr, maxHeaderSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress header: %w", err)
	}
	if len(header) > maxHeaderSize {
		return nil, errorf(CodeBadContainer, "decompressed header exceeds %d bytes", maxHeaderSize)
	}
	if err := c.parseHeader(header); err != nil {
		return nil, err
	}

	payload, err := readSection(r, (int64(codeBits)+7)/8, "code")
	if err != nil {
		return nil, err
	}
	c.Code, err = NewBits(payload, int(codeBits))
	if err != nil {
		return nil, err
	}
	return c, nil
}

// readSection reads exactly n bytes, growing the buffer as data arrives so a
// corrupt length cannot force a large allocation up front
func readSection(r io.Reader, n int64, what string) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r, n); err != nil {
		return nil, errorf(CodeBadContainer, "failed to read %s: %v", what, err)
	}
	return buf.Bytes(), nil
}

func (c *Container) parseHeader(data []byte) error {
	nameLen, n := binary.Uvarint(data)
	if n <= 0 || uint64(len(data)-n) < nameLen {
		return errorf(CodeBadContainer, "grammar name beyond end of header")
	}
	pos := n
	c.GrammarName = string(data[pos : pos+int(nameLen)])
	pos += int(nameLen)

	if len(data)-pos < digestSize {
		return errorf(CodeBadContainer, "digest beyond end of header")
	}
	copy(c.Digest[:], data[pos:pos+digestSize])
	pos += digestSize

	numCounts, n := binary.Uvarint(data[pos:])
	if n <= 0 || numCounts > uint64(len(data)) {
		return errorf(CodeBadContainer, "malformed rule count table")
	}
	pos += n
	if numCounts > 0 {
		c.Counts = make(RuleCounts, numCounts)
	}
	for i := range c.Counts {
		v, n := binary.Uvarint(data[pos:])
		if n <= 0 {
			return errorf(CodeBadContainer, "rule count %d beyond end of header", i)
		}
		c.Counts[i] = v
		pos += n
	}
	if pos != len(data) {
		return errorf(CodeBadContainer, "%d trailing header bytes", len(data)-pos)
	}
	return nil
}

// Session describes how molecules are coded into containers
type Session struct {
	Grammar *Grammar
	Model   ModelKind

	// Table is required for static models
	Table ProbabilityTable

	Config Config
}

// Encode codes rna and wraps the result in a container
func (s Session) Encode(rna RNA) (*Container, error) {
	var counts RuleCounts
	if s.Model == ModelSemiAdaptive {
		var err error
		if counts, err = SemiAdaptiveCounts(s.Grammar, rna); err != nil {
			return nil, err
		}
	}
	model, err := NewModel(s.Model, s.Grammar, s.Table, counts)
	if err != nil {
		return nil, err
	}
	enc, err := NewEncoder(model, s.Config)
	if err != nil {
		return nil, err
	}
	code, err := enc.EncodeRNA(rna)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Backend:     s.Config.Backend,
		Model:       s.Model,
		GrammarName: s.Grammar.Name(),
		Digest:      Digest(rna),
		Counts:      counts,
		Code:        code,
	}
	if s.Config.Backend == BackendInteger {
		c.Scale = s.Config.Scale
	}
	return c, nil
}

// Decode rebuilds the molecule in c and checks it against the stored digest.
// The backend, model kind and scale come from the container.
func (s Session) Decode(c *Container) (RNA, error) {
	if c.GrammarName != s.Grammar.Name() {
		return RNA{}, errorf(CodeBadContainer, "container was coded with grammar %q, not %q",
			c.GrammarName, s.Grammar.Name())
	}
	cfg := s.Config
	cfg.Backend = c.Backend
	cfg.Scale = c.Scale

	model, err := NewModel(c.Model, s.Grammar, s.Table, c.Counts)
	if err != nil {
		return RNA{}, err
	}
	dec, err := NewDecoder(model, cfg)
	if err != nil {
		return RNA{}, err
	}
	rna, err := dec.DecodeRNA(c.Code)
	if err != nil {
		return RNA{}, err
	}
	if Digest(rna) != c.Digest {
		return RNA{}, errorf(CodeVerificationMismatch, "decoded molecule does not match the stored digest")
	}
	return rna, nil
}

// EncodeToContainer codes rna and writes the container to w
func (s Session) EncodeToContainer(w io.Writer, rna RNA) (*Container, error) {
	c, err := s.Encode(rna)
	if err != nil {
		return nil, err
	}
	if err := WriteContainer(w, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DecodeContainer reads a container from r and decodes it
func (s Session) DecodeContainer(r io.Reader) (RNA, error) {
	c, err := ReadContainer(r)
	if err != nil {
		return RNA{}, err
	}
	return s.Decode(c)
}
