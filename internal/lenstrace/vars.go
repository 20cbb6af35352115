package lenstrace

var (
	Debug = false // set to true for verbose debug output

	// Swappable collaborator entry points. The orchestrator only ever calls
	// through these, so alternate surface models or solvers can be plugged in.
	TraceRayFunc          = TraceRay
	ComputeFirstOrderFunc = ComputeFirstOrder
	WaveAbrFunc           = WaveAbr
	WvlToRGBFunc          = wvlToRGB

	// Compile time checks that the default implementations satisfy the
	// collaborator contracts.
	_ SequenceModel = (*SeqModel)(nil)
	_ Profile       = (*Interface)(nil)
)
