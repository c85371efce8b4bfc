package mp4container

import (
	"testing"

	"github.com/user/framesampler/pkg/mocks"
)

var (
	testSPS = mocks.FixtureSPS
	testPPS = mocks.FixturePPS
)

const videoDur = mocks.FixtureVideoDuration

func buildFragmentedMP4(t *testing.T, fragments, videoPerFrag, audioPerFrag int) []byte {
	t.Helper()
	data, err := mocks.FragmentedMP4(fragments, videoPerFrag, audioPerFrag)
	if err != nil {
		t.Fatalf("build fragmented mp4: %v", err)
	}
	return data
}

func buildFragmentedMP4WithSyncFlags(t *testing.T, fragments, videoPerFrag int, syncFlags uint32) []byte {
	t.Helper()
	data, err := mocks.FragmentedMP4WithSyncFlags(fragments, videoPerFrag, 0, syncFlags)
	if err != nil {
		t.Fatalf("build fragmented mp4: %v", err)
	}
	return data
}

func buildProgressiveMP4(t *testing.T, chunks, videoPerChunk, audioPerChunk int) []byte {
	t.Helper()
	data, err := mocks.ProgressiveMP4(chunks, videoPerChunk, audioPerChunk)
	if err != nil {
		t.Fatalf("build progressive mp4: %v", err)
	}
	return data
}
