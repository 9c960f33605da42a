package vm

// An Access is one reference of a memory trace.
type Access struct {
	Address uint64
	IsWrite bool
}
