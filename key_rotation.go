package pak

import "strings"

// WalkFunc is called once per descriptor during MemoryEditor.Walk. path is
// the descriptor's full slash-separated path from the archive root.
// Returning an error stops the walk and the error propagates out of Walk.
type WalkFunc func(path string, desc *Descriptor) error

// Walk visits every descriptor in the editor's directory in pre-order,
// mirroring the flattened tree layout: a directory is visited before its
// children.
func (e *MemoryEditor) Walk(fn WalkFunc) error {
	return walkRec(e.dir, "", fn)
}

func walkRec(dir []Descriptor, prefix string, fn WalkFunc) error {
	i := 0
	for i < len(dir) {
		desc := &dir[i]
		nextI := NextSibling(desc, i, len(dir))

		path := string(desc.Name())
		if prefix != "" {
			path = prefix + "/" + path
		}
		if err := fn(path, desc); err != nil {
			return err
		}
		if desc.IsDir() {
			if err := walkRec(dir[i+1:nextI], path, fn); err != nil {
				return err
			}
		}
		i = nextI
	}
	return nil
}

// RotateKey re-encrypts every file's payload from oldKey to newKey, sampling
// a fresh nonce for each section as it goes. It does not touch the
// directory or header encryption directly — those are (re)encrypted under
// newKey the next time Finish is called. Directories are left untouched;
// only file payload sections hold ciphertext before Finish runs.
func (e *MemoryEditor) RotateKey(oldKey, newKey *Key) error {
	if err := validateKey(oldKey); err != nil {
		return err
	}
	if err := validateKey(newKey); err != nil {
		return err
	}

	return e.Walk(func(_ string, desc *Descriptor) error {
		if !desc.IsFile() {
			return nil
		}
		start, end := desc.Section.Range()
		if start < 0 || end > len(e.blocks) {
			return nil
		}

		oldNonce := desc.Section.Nonce
		var fresh [1]Block
		randomBlocks(fresh[:])
		desc.Section.Nonce = fresh[0]
		ReencryptData(e.blocks[start:end], &oldNonce, &desc.Section.Nonce, oldKey, newKey)
		return nil
	})
}

// FindAllByPrefix returns the paths of every descriptor whose path starts
// with prefix, in pre-order. A trailing slash on prefix is ignored. This is
// a convenience built on Walk, useful for auditing or selectively
// re-encrypting a subtree.
func (e *MemoryEditor) FindAllByPrefix(prefix string) ([]string, error) {
	prefix = strings.TrimSuffix(prefix, "/")
	var paths []string
	err := e.Walk(func(path string, _ *Descriptor) error {
		if prefix == "" || path == prefix || strings.HasPrefix(path, prefix+"/") {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}
