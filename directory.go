package pak

import (
	"io"
	"strings"
)

// NameEq compares the next path component against desc's name. It returns
// the remainder of path with that component and its separator removed, and
// true, on a match; otherwise it returns path unchanged and false.
func NameEq(desc *Descriptor, path []byte) ([]byte, bool) {
	name := desc.Name()
	i := 0
	for {
		if len(name) == i {
			if len(path) == i {
				return path[i:], true
			}
			if path[i] == '/' || path[i] == '\\' {
				return path[i+1:], true
			}
			return path, false
		}
		if len(path) == i || name[i] != path[i] {
			return path, false
		}
		i++
	}
}

// NextSibling returns the index of the descriptor following desc and all of
// its descendants, within a slice of length end starting at index i.
// Corrupt descendant counts are clamped to end rather than overflowing.
func NextSibling(desc *Descriptor, i, end int) int {
	if i >= end {
		panic("pak: index out of range")
	}
	if desc.IsDir() {
		maxSize := end - (i + 1)
		minSize := int(desc.ContentSize)
		if minSize > maxSize {
			minSize = maxSize
		}
		return i + 1 + minSize
	}
	return i + 1
}

// Find traverses dir along path and returns the matching slice: empty if
// nothing matched, length one for a file, or the directory descriptor
// followed by all its descendants for a directory.
func Find(dir []Descriptor, path []byte) []Descriptor {
	if len(path) == 0 {
		return dir[:0]
	}
	i, end := 0, len(dir)
	for i < end {
		desc := &dir[i]
		nextI := NextSibling(desc, i, end)
		if tail, ok := NameEq(desc, path); ok {
			if len(tail) == 0 {
				return dir[i:nextI]
			}
			if desc.IsDir() {
				path = tail
				i = i + 1
				end = nextI
				continue
			}
		}
		i = nextI
	}
	return dir[:0]
}

// FindDesc returns the first descriptor matched by Find, if any.
func FindDesc(dir []Descriptor, path []byte) (*Descriptor, bool) {
	result := Find(dir, path)
	if len(result) == 0 {
		return nil, false
	}
	return &result[0], true
}

// FindDir returns the children of the directory matched by Find.
func FindDir(dir []Descriptor, path []byte) ([]Descriptor, bool) {
	result := Find(dir, path)
	if len(result) == 0 {
		return nil, false
	}
	return result[1:], true
}

// FindEncrypted locates a descriptor along path within an encrypted
// directory, decrypting exactly one descriptor at a time. It returns the
// decrypted descriptor on a match, or false if nothing matched.
func FindEncrypted(encryptedDir []Descriptor, path []byte, nonce *Block, key *Key) (Descriptor, bool) {
	if len(path) == 0 {
		return Descriptor{}, false
	}
	i, end := 0, len(encryptedDir)
	n := *nonce
	for i < end {
		desc := DecryptDesc(&encryptedDir[i], &n, key)
		nextI := NextSibling(&desc, i, end)
		if tail, ok := NameEq(&desc, path); ok {
			if len(tail) == 0 {
				return desc, true
			}
			if desc.IsDir() {
				path = tail
				n = counter(&n, DescriptorBlocks)
				i = i + 1
				end = nextI
				continue
			}
		}
		n = counter(&n, (nextI-i)*DescriptorBlocks)
		i = nextI
	}
	return Descriptor{}, false
}

// dirInc walks dir along path, incrementing every traversed directory
// descriptor's descendant count by inc, and returns the index at which path
// was last matched (or where it diverged). It does not check whether a
// descriptor already exists there.
func dirInc(dir []Descriptor, path *[]byte, inc int32) int {
	p := *path
	i, end := 0, len(dir)
	for i < end {
		desc := &dir[i]
		nextI := NextSibling(desc, i, end)
		if tail, ok := NameEq(desc, p); ok {
			if len(tail) == 0 {
				*path = tail
				return i
			}
			if desc.IsDir() {
				desc.ContentSize = uint32(int32(desc.ContentSize) + inc)
				p = tail
				i = i + 1
				end = nextI
				continue
			}
			*path = p
			return i
		}
		i = nextI
	}
	*path = p
	return i
}

// flenck counts the path components remaining in path, ignoring a single
// trailing separator.
func flenck(path []byte) int32 {
	if len(path) == 0 {
		return 0
	}
	components := int32(0)
	for i := 0; i < len(path); i++ {
		if path[i] == '/' || path[i] == '\\' {
			if i+1 == len(path) {
				return components + 1
			}
			components++
		}
	}
	return components + 1
}

// Create finds or creates a descriptor at path, creating any missing parent
// directories along the way, and returns a pointer into dir at that
// descriptor. If a file descriptor already occupies a path component, a
// directory descriptor of the same name is created alongside it.
//
// Newly created descriptors are all directory descriptors (content type
// zero); callers that want a file must set the content type themselves
// (see MemoryEditFile.SetContent).
func Create(dir *[]Descriptor, path []byte) *Descriptor {
	tail := path
	i := dirInc(*dir, &tail, 0)

	inc := int(flenck(tail))
	if inc == 0 {
		return &(*dir)[i]
	}

	// Replay with the real increment; the traversal matches the same
	// descriptors as the dry run above (content_size changes don't affect
	// name matching), so tail ends up identical.
	tail = path
	dirInc(*dir, &tail, int32(inc))

	oldLen := len(*dir)
	newLen := oldLen + inc
	if cap(*dir) < newLen {
		grown := make([]Descriptor, newLen, newLen+newLen/2+1)
		copy(grown, (*dir)[:oldLen])
		*dir = grown
	} else {
		*dir = (*dir)[:newLen]
	}
	for j := oldLen - 1; j >= i; j-- {
		(*dir)[j+inc] = (*dir)[j]
	}

	for j := 0; j < inc; j++ {
		k := 0
		for k < len(tail) && tail[k] != '/' && tail[k] != '\\' {
			k++
		}
		dirLen := uint32(inc - (j + 1))
		dirName := tail[:k]
		(*dir)[i+j] = DirDescriptor(dirName, dirLen)
		if k == len(tail) {
			tail = tail[k:]
		} else {
			tail = tail[k+1:]
		}
	}

	return &(*dir)[i+inc-1]
}

// Remove finds and removes the descriptor at path. It returns false if
// nothing was found; the directory is left unchanged in that case. If
// deleted is non-nil, the removed descriptor is copied into it. Removing a
// directory promotes its direct children to its former parent.
func Remove(dir *[]Descriptor, path []byte, deleted *Descriptor) bool {
	temp := path
	i := dirInc(*dir, &temp, 0)
	if len(temp) != 0 || i >= len(*dir) {
		return false
	}

	temp = path
	dirInc(*dir, &temp, -1)

	if deleted != nil {
		*deleted = (*dir)[i]
	}

	*dir = append((*dir)[:i], (*dir)[i+1:]...)
	return true
}

// UpdateDirAddress finalizes every directory descriptor's section to point
// at its children's position within the flattened dir slice. Must be called
// once, after all mutations and before serialising the directory.
func UpdateDirAddress(dir []Descriptor) {
	for i := range dir {
		desc := &dir[i]
		if desc.IsDir() {
			desc.Section.Offset = uint32(i + 1)
			desc.Section.Size = desc.ContentSize
		}
	}
}

//----------------------------------------------------------------
// Tree rendering

// Art supplies the box-drawing strings used to render a directory tree.
type Art struct {
	MarginOpen   string
	MarginClosed string
	DirEntry     string
	DirLast      string
	FileEntry    string
	FileLast     string
}

// ArtASCII renders trees using plain ASCII characters.
var ArtASCII = Art{
	MarginOpen:   "   ",
	MarginClosed: "|  ",
	DirEntry:     "+- ",
	DirLast:      "`- ",
	FileEntry:    "|  ",
	FileLast:     "`  ",
}

// ArtUnicode renders trees using box-drawing characters.
var ArtUnicode = Art{
	MarginOpen:   "   ",
	MarginClosed: "│  ",
	DirEntry:     "├─ ",
	DirLast:      "└─ ",
	FileEntry:    "│  ",
	FileLast:     "└  ",
}

// maxTreeDepth bounds recursion against corrupt descendant counts that would
// otherwise recurse arbitrarily deep.
const maxTreeDepth = 31

// treeWriter wraps an io.Writer, recording the first write error and
// ignoring writes after it, so fmtRec/fmtMargin don't need to thread error
// returns through every recursive call.
type treeWriter struct {
	w   io.Writer
	err error
}

func (tw *treeWriter) writeString(s string) {
	if tw.err != nil {
		return
	}
	_, tw.err = io.WriteString(tw.w, s)
}

func (tw *treeWriter) write(b []byte) {
	if tw.err != nil {
		return
	}
	_, tw.err = tw.w.Write(b)
}

// WriteTree renders dir as an indented tree, in the style of the Unix `tree`
// command, streaming directly to w. It returns the first error w.Write
// returns, if any.
func WriteTree(w io.Writer, dir []Descriptor, art Art) error {
	tw := &treeWriter{w: w}
	fmtRec(tw, 0, 0, dir, art)
	return tw.err
}

// Tree renders dir as an indented tree and returns the result as a string.
// It never fails: it is WriteTree wrapped around a strings.Builder, whose
// Write method never returns an error.
func Tree(dir []Descriptor, art Art) string {
	var b strings.Builder
	WriteTree(&b, dir, art)
	return b.String()
}

func fmtMargin(tw *treeWriter, margin uint32, depth uint32, art Art) {
	for i := uint32(0); i < depth; i++ {
		if margin&(1<<i) != 0 {
			tw.writeString(art.MarginOpen)
		} else {
			tw.writeString(art.MarginClosed)
		}
	}
}

func fmtRec(tw *treeWriter, margin uint32, depth uint32, dir []Descriptor, art Art) {
	if depth >= maxTreeDepth {
		return
	}
	if depth == 0 {
		tw.writeString("./\n")
	}

	wasDir := false
	i := 0
	for i < len(dir) {
		desc := &dir[i]

		if i != 0 && (desc.IsDir() || wasDir) {
			fmtMargin(tw, margin, depth+1, art)
			tw.writeString("\n")
		}
		wasDir = desc.IsDir()

		fmtMargin(tw, margin, depth, art)

		nextI := NextSibling(desc, i, len(dir))

		isLast := len(dir) == nextI
		var prefix string
		switch {
		case isLast && desc.IsDir():
			prefix = art.DirLast
		case isLast && !desc.IsDir():
			prefix = art.FileLast
		case !isLast && desc.IsDir():
			prefix = art.DirEntry
		default:
			prefix = art.FileEntry
		}
		tw.writeString(prefix)
		tw.write(desc.Name())

		if desc.IsDir() {
			tw.writeString("/\n")
			var newMargin uint32
			if isLast {
				newMargin = margin | (1 << depth)
			} else {
				newMargin = margin
			}
			fmtRec(tw, newMargin, depth+1, dir[i+1:nextI], art)
		} else {
			tw.writeString("\n")
		}

		i = nextI
	}
}
