package assembly

// Assembly turns a bytecode program into a native executable
type Assembly interface {
	Generate() error
	GetCode() string
	Build() error
}
