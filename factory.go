package mustachec

// factory constructs Code nodes (spec §4.13). One method per variant;
// each node records the source line it was compiled from for
// diagnostics. The factory's file is not passed on to the nodes.
// Partial and Extend construction can fail.
type factory struct {
	file   string
	handle Handle
	debug  bool
}

func newFactory(file string, handle Handle, debug bool) *factory {
	return &factory{file: file, handle: handle, debug: debug}
}

func (f *factory) write(text string, line int) Code {
	return newWriteCode(text, line)
}

func (f *factory) value(name string, encoded bool, line int) Code {
	return newValueCode(name, encoded, line, f.handle)
}

func (f *factory) iterable(name string, children []Code, line int) Code {
	return newIterableCode(name, children, line, f.handle)
}

func (f *factory) ifIterable(name string, children []Code, line int) Code {
	return newIfIterableCode(name, children, line, f.handle)
}

func (f *factory) invertedIterable(name string, children []Code, line int) Code {
	return newInvertedIterableCode(name, children, line, f.handle)
}

func (f *factory) function(name string, children []Code, line int) Code {
	return newFunctionCode(name, children, line, f.handle)
}

func (f *factory) partial(name string, line int) (Code, error) {
	return newPartialCode(name, line, f.handle)
}

func (f *factory) extend(name string, children []Code, line int) (Code, error) {
	return newExtendCode(name, children, line, f.handle, f.debug)
}

func (f *factory) name(name string, children []Code, line int) Code {
	return newNameCode(name, children, line, f.handle)
}

func (f *factory) eof(line int) Code {
	return newEofCode(line)
}
