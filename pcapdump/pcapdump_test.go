package pcapdump

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriterPlainFraming(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "test.pcap")
	w, err := New(fp, FrameTypePlain)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Close() }()

	assert.NoError(t, w.Sync())
	assert.Equal(t, pcapFileHeaderSize, getFileSize(t, fp))

	for i := 0; i < 10; i++ {
		assert.NoError(t, w.AppendFrame(Frame{Data: []byte{0x0}}))
		assert.NoError(t, w.Sync())
		assert.Equal(t, pcapFileHeaderSize+(frameRecordHeaderLen+1)*(i+1), getFileSize(t, fp))
	}
}

func TestWriterTapFraming(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "test_tap.pcap")
	w, err := New(fp, FrameTypeWpanTap)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Close() }()

	assert.NoError(t, w.AppendFrame(Frame{Channel: 11, RssiDbm: -72.5, Data: []byte{1, 2, 3}}))
	assert.NoError(t, w.Sync())
	assert.Greater(t, getFileSize(t, fp), pcapFileHeaderSize+tapFrameHeaderSize)
}

func getFileSize(t *testing.T, fp string) int {
	info, err := os.Stat(fp)
	if err != nil {
		t.Fatal(err)
	}
	return int(info.Size())
}
