package bank

import (
	"path"
	"strings"
)

// Kind identifies the type of a file stored in a bank. The declaration
// order matches the order in which kinds appear inside a bank file, so
// the zero-based values double as the canonical sort key on write.
type Kind int

const (
	KindBackground Kind = iota
	KindMetadata
	KindSample
	KindMultipassPreset
	KindPhasePlantPreset
	KindSnapHeapPreset
	KindThreeBandEq
	KindBitcrush
	KindCarveEq
	KindChorus
	KindCombFilter
	KindCompressor
	KindConvolver
	KindDelay
	KindDisperser
	KindDistortion
	KindDynamics
	KindEnsemble
	KindFaturator
	KindFilter
	KindFlanger
	KindFormantFilter
	KindFrequencyShifter
	KindGain
	KindGate
	KindHaas
	KindLadderFilter
	KindLimiter
	KindNonlinearFilter
	KindPhaseDistortion
	KindPhaser
	KindPitchShifter
	KindResonator
	KindReverb
	KindReverser
	KindRingMod
	KindSliceEq
	KindStereo
	KindTapeStop
	KindTranceGate
	KindTransientShaper

	// KindUnknown marks files that are not recognized bank members.
	// They are excluded from created banks rather than causing failure.
	KindUnknown Kind = -1
)

// kindExtensions maps every supported kind to its file name
// extensions, without the leading dot. Extensions are matched
// case-insensitively.
var kindExtensions = map[Kind][]string{
	KindBackground:       {"jpg", "png"},
	KindMetadata:         {"json"},
	KindSample:           {"flac", "mp3", "wav"},
	KindMultipassPreset:  {"multipass"},
	KindPhasePlantPreset: {"phaseplant"},
	KindSnapHeapPreset:   {"snapheap"},
	KindThreeBandEq:      {"ksqe"},
	KindBitcrush:         {"ksbc"},
	KindCarveEq:          {"ksge"},
	KindChorus:           {"ksch"},
	KindCombFilter:       {"kscf"},
	KindCompressor:       {"kscp"},
	KindConvolver:        {"ksco"},
	KindDelay:            {"ksdl"},
	KindDisperser:        {"kdsp"},
	KindDistortion:       {"ksdt"},
	KindDynamics:         {"ksot"},
	KindEnsemble:         {"ksun"},
	KindFaturator:        {"kfat"},
	KindFilter:           {"ksfi"},
	KindFlanger:          {"ksfl"},
	KindFormantFilter:    {"ksvf"},
	KindFrequencyShifter: {"ksfs"},
	KindGain:             {"ksgn"},
	KindGate:             {"ksgt"},
	KindHaas:             {"ksha"},
	KindLadderFilter:     {"ksla"},
	KindLimiter:          {"kslt"},
	KindNonlinearFilter:  {"ksdf"},
	KindPhaseDistortion:  {"kspd"},
	KindPhaser:           {"ksph"},
	KindPitchShifter:     {"ksps"},
	KindResonator:        {"ksre"},
	KindReverb:           {"ksrv"},
	KindReverser:         {"ksrr"},
	KindRingMod:          {"ksrm"},
	KindSliceEq:          {"kpeq"},
	KindStereo:           {"ksst"},
	KindTapeStop:         {"ksts"},
	KindTranceGate:       {"kstg"},
	KindTransientShaper:  {"kstr"},
}

var kindNames = map[Kind]string{
	KindBackground:       "background",
	KindMetadata:         "metadata",
	KindSample:           "sample",
	KindMultipassPreset:  "multipass-preset",
	KindPhasePlantPreset: "phaseplant-preset",
	KindSnapHeapPreset:   "snapheap-preset",
	KindThreeBandEq:      "3-band-eq",
	KindBitcrush:         "bitcrush",
	KindCarveEq:          "carve-eq",
	KindChorus:           "chorus",
	KindCombFilter:       "comb-filter",
	KindCompressor:       "compressor",
	KindConvolver:        "convolver",
	KindDelay:            "delay",
	KindDisperser:        "disperser",
	KindDistortion:       "distortion",
	KindDynamics:         "dynamics",
	KindEnsemble:         "ensemble",
	KindFaturator:        "faturator",
	KindFilter:           "filter",
	KindFlanger:          "flanger",
	KindFormantFilter:    "formant-filter",
	KindFrequencyShifter: "frequency-shifter",
	KindGain:             "gain",
	KindGate:             "gate",
	KindHaas:             "haas",
	KindLadderFilter:     "ladder-filter",
	KindLimiter:          "limiter",
	KindNonlinearFilter:  "nonlinear-filter",
	KindPhaseDistortion:  "phase-distortion",
	KindPhaser:           "phaser",
	KindPitchShifter:     "pitch-shifter",
	KindResonator:        "resonator",
	KindReverb:           "reverb",
	KindReverser:         "reverser",
	KindRingMod:          "ring-mod",
	KindSliceEq:          "slice-eq",
	KindStereo:           "stereo",
	KindTapeStop:         "tape-stop",
	KindTranceGate:       "trance-gate",
	KindTransientShaper:  "transient-shaper",
}

// AllKinds returns every supported kind in bank storage order.
func AllKinds() []Kind {
	kinds := make([]Kind, 0, len(kindExtensions))
	for k := KindBackground; k <= KindTransientShaper; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// String returns a short human-readable name for the kind, used by
// the list command output.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Extensions returns the file name extensions used by this kind of
// file, without the leading dot.
func (k Kind) Extensions() []string {
	return kindExtensions[k]
}

// HasExtension reports whether the given extension belongs to this
// kind. Case-insensitive, without a leading dot.
func (k Kind) HasExtension(ext string) bool {
	for _, e := range kindExtensions[k] {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// Folder returns the name of the directory that holds files of this
// kind inside the bank, or "" for kinds stored at the root
// (background image and metadata).
func (k Kind) Folder() string {
	switch k {
	case KindBackground, KindMetadata, KindUnknown:
		return ""
	case KindSample:
		return "samples"
	default:
		exts := kindExtensions[k]
		if len(exts) == 0 {
			return ""
		}
		return exts[0]
	}
}

// folderKinds maps bank folder names back to their kind, for
// classifying directory entries when reading.
var folderKinds = func() map[string]Kind {
	m := make(map[string]Kind)
	for _, k := range AllKinds() {
		if dir := k.Folder(); dir != "" {
			m[dir] = k
		}
	}
	return m
}()

// KindForFolder returns the kind stored under the given bank folder
// name, or KindUnknown.
func KindForFolder(name string) Kind {
	if k, ok := folderKinds[strings.ToLower(name)]; ok {
		return k
	}
	return KindUnknown
}

// KindForPath classifies a file path. The metadata file and the
// background image are recognized by their well-known names, every
// other member by its extension. Unrecognized paths are KindUnknown,
// never an error: classification is deliberately conservative so that
// stray files are skipped instead of failing a whole create.
func KindForPath(p string) Kind {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if strings.EqualFold(base, MetadataFileName) {
		return KindMetadata
	}

	stem := base
	ext := ""
	if i := strings.LastIndex(base, "."); i > 0 {
		stem = base[:i]
		ext = base[i+1:]
	}
	if strings.EqualFold(stem, BackgroundFileStem) && ext == "" {
		return KindBackground
	}
	if ext == "" {
		return KindUnknown
	}

	for _, k := range AllKinds() {
		if k.HasExtension(ext) {
			return k
		}
	}
	return KindUnknown
}
