package resolve

// FileStack is the chain of notes being rendered, innermost first.
// Frames are immutable: Push returns a new stack and leaves the receiver untouched,
// so leaving an embedded note only requires to drop the returned value.
type FileStack struct {
	path    string
	section string // Heading or block ("^id") when only a part of the note is rendered
	parent  *FileStack
	depth   int
}

// NewFileStack starts a stack with the entry note.
func NewFileStack(path string) *FileStack {
	return &FileStack{path: path, depth: 1}
}

// Push enters an embedded note.
func (s *FileStack) Push(path string) *FileStack {
	return s.PushSection(path, "")
}

// PushSection enters a section (or a block) of an embedded note.
func (s *FileStack) PushSection(path, section string) *FileStack {
	if s == nil {
		return &FileStack{path: path, section: section, depth: 1}
	}
	return &FileStack{path: path, section: section, parent: s, depth: s.depth + 1}
}

// Current returns the note containing the links being parsed.
func (s *FileStack) Current() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Contains reports if the note is already being rendered (embed cycle).
func (s *FileStack) Contains(path string) bool {
	return s.ContainsSection(path, "")
}

// ContainsSection reports if the section of the note is already being rendered.
// An empty section means the whole note, which contains all its sections.
// Other sections of a note being rendered can still be embedded.
func (s *FileStack) ContainsSection(path, section string) bool {
	for frame := s; frame != nil; frame = frame.parent {
		if frame.path == path && (section == "" || frame.section == section) {
			return true
		}
	}
	return false
}

func (s *FileStack) Depth() int {
	if s == nil {
		return 0
	}
	return s.depth
}

// Paths returns the notes from the entry note to the current one.
func (s *FileStack) Paths() []string {
	paths := make([]string, s.Depth())
	for frame := s; frame != nil; frame = frame.parent {
		paths[frame.depth-1] = frame.path
	}
	return paths
}
