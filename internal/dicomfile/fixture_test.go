package dicomfile

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/suyashkumar/dicom/pkg/tag"
)

// element is a fixture element in explicit VR little endian.
type element struct {
	tag   tag.Tag
	vr    string
	value []byte
}

func str(t tag.Tag, vr, v string) element {
	b := []byte(v)
	if len(b)%2 == 1 {
		pad := byte(' ')
		if vr == "UI" {
			pad = 0
		}
		b = append(b, pad)
	}
	return element{tag: t, vr: vr, value: b}
}

func us(t tag.Tag, v uint16) element {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return element{tag: t, vr: "US", value: b}
}

func encode(buf *bytes.Buffer, els []element) {
	sort.Slice(els, func(i, j int) bool {
		if els[i].tag.Group != els[j].tag.Group {
			return els[i].tag.Group < els[j].tag.Group
		}
		return els[i].tag.Element < els[j].tag.Element
	})
	for _, el := range els {
		binary.Write(buf, binary.LittleEndian, el.tag.Group)
		binary.Write(buf, binary.LittleEndian, el.tag.Element)
		buf.WriteString(el.vr)
		switch el.vr {
		case "OB", "OW", "SQ", "UN", "UT":
			buf.Write([]byte{0, 0})
			binary.Write(buf, binary.LittleEndian, uint32(len(el.value)))
		default:
			binary.Write(buf, binary.LittleEndian, uint16(len(el.value)))
		}
		buf.Write(el.value)
	}
}

// writePart10 writes a Part 10 file holding els to dir/name.
func writePart10(t *testing.T, dir, name, sopClass string, els ...element) string {
	t.Helper()

	var meta bytes.Buffer
	encode(&meta, []element{
		{tag: tag.Tag{Group: 0x0002, Element: 0x0001}, vr: "OB", value: []byte{0, 1}},
		str(tag.Tag{Group: 0x0002, Element: 0x0002}, "UI", sopClass),
		str(tag.Tag{Group: 0x0002, Element: 0x0003}, "UI", "1.2.3.4."+name),
		str(tag.Tag{Group: 0x0002, Element: 0x0010}, "UI", "1.2.840.10008.1.2.1"),
	})

	var out bytes.Buffer
	out.Write(make([]byte, 128))
	out.WriteString("DICM")
	groupLen := make([]byte, 4)
	binary.LittleEndian.PutUint32(groupLen, uint32(meta.Len()))
	encode(&out, []element{{tag: tag.Tag{Group: 0x0002, Element: 0x0000}, vr: "UL", value: groupLen}})
	out.Write(meta.Bytes())

	els = append(els, str(tagSOPClassUID, "UI", sopClass))
	encode(&out, els)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}
