package gocard

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// fontKey uniquely identifies a font face by name, pixel size and weight.
type fontKey struct {
	name string
	size float64
	bold bool
}

// FontCache manages TrueType font discovery and parsing.
// It searches system font directories and user-specified directories
// for .ttf, .otf and .ttc files, then caches the parsed fonts.
//
// Parsed fonts are shared and safe for concurrent use. Faces are not: every
// face returned by GetFace or Resolve is new and belongs to the caller.
type FontCache struct {
	mu      sync.RWMutex
	dirs    []string                  // directories to search for fonts
	fonts   map[string]*opentype.Font // lowercase font name -> parsed font
	scanned bool

	builtinOnce sync.Once
	builtin     [2]*opentype.Font // regular, bold
}

// NewFontCache creates a FontCache that searches the given directories
// plus the OS default font directories.
func NewFontCache(extraDirs ...string) *FontCache {
	dirs := append(systemFontDirs(), extraDirs...)
	return &FontCache{
		dirs:  dirs,
		fonts: make(map[string]*opentype.Font),
	}
}

// newIsolatedFontCache never scans the file system; only fonts registered
// with LoadFont/LoadFontData and the built-in Go fonts resolve.
func newIsolatedFontCache() *FontCache {
	fc := NewFontCache()
	fc.dirs = nil
	return fc
}

// GetFace returns a new font.Face for the given font name, pixel size and
// weight. It returns nil if no installed or registered font matches the name.
func (fc *FontCache) GetFace(name string, sizePx float64, bold bool) font.Face {
	fc.ensureScanned()
	f := fc.findFont(name, bold)
	if f == nil {
		return nil
	}
	return newFace(f, sizePx)
}

// Resolve returns a new face for f, walking the fallback chain: the requested
// family, common Hangul-capable and sans families, the embedded Go fonts and
// finally basicfont. It never returns nil.
func (fc *FontCache) Resolve(f *Font) font.Face {
	if f == nil {
		f = NewFont()
	}
	size := f.Size
	if size <= 0 {
		size = 16
	}
	if parsed := fc.lookup(f.Name, f.Bold); parsed != nil {
		if face := newFace(parsed, size); face != nil {
			return face
		}
	}
	return basicfont.Face7x13
}

// lookup finds the parsed font for a family along the fallback chain, or nil
// when even the embedded Go fonts are unavailable.
func (fc *FontCache) lookup(name string, bold bool) *opentype.Font {
	fc.ensureScanned()
	if f := fc.findFont(name, bold); f != nil {
		return f
	}
	for _, fallback := range fallbackFamilies {
		if f := fc.findFont(fallback, bold); f != nil {
			return f
		}
	}
	return fc.builtinFont(bold)
}

var fallbackFamilies = []string{
	"pretendard",
	"noto sans cjk kr",
	"noto sans kr",
	"nanumgothic",
	"malgun gothic",
	"apple sd gothic neo",
	"arial",
	"dejavu sans",
	"liberation sans",
}

func (fc *FontCache) builtinFont(bold bool) *opentype.Font {
	fc.builtinOnce.Do(func() {
		// The embedded TTFs are known-good; a parse error leaves the slot nil.
		fc.builtin[0], _ = opentype.Parse(goregular.TTF)
		fc.builtin[1], _ = opentype.Parse(gobold.TTF)
	})
	if bold && fc.builtin[1] != nil {
		return fc.builtin[1]
	}
	return fc.builtin[0]
}

func newFace(f *opentype.Font, sizePx float64) font.Face {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72, // 1pt == 1px
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil
	}
	return face
}

// findFont looks up a parsed font by name. Bold requests try the bold
// variants of every spelling of the name before any regular weight.
func (fc *FontCache) findFont(name string, bold bool) *opentype.Font {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	lower := strings.ToLower(name)
	keys := []string{lower}
	// "Pretendard-Regular" is also installed as "Pretendard Regular" or "Pretendard".
	if base, _, ok := strings.Cut(lower, "-"); ok {
		keys = append(keys, base)
	}
	if alias, ok := koreanFontAliases[lower]; ok {
		keys = append(keys, alias)
	}

	if bold {
		for _, key := range keys {
			for _, suffix := range []string{" bold", "-bold", "bd", "b"} {
				if f, ok := fc.fonts[key+suffix]; ok {
					return f
				}
			}
		}
	}
	for _, key := range keys {
		for _, suffix := range []string{"", " regular", "-regular"} {
			if f, ok := fc.fonts[key+suffix]; ok {
				return f
			}
		}
	}
	return nil
}

// LoadFont manually loads a TrueType/OpenType font file and registers it under the given name.
// Returns an error if the file exceeds maxFontFileSize.
func (fc *FontCache) LoadFont(name string, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() > maxFontFileSize {
		return fmt.Errorf("font file too large: %d bytes (max %d)", info.Size(), maxFontFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return fc.LoadFontData(name, data)
}

// LoadFontData registers a TrueType/OpenType font from raw bytes.
func (fc *FontCache) LoadFontData(name string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %q: %w", name, err)
	}
	fc.mu.Lock()
	fc.fonts[strings.ToLower(name)] = f
	fc.registerByFamilyName(f)
	fc.mu.Unlock()
	return nil
}

func (fc *FontCache) ensureScanned() {
	fc.mu.RLock()
	scanned := fc.scanned
	fc.mu.RUnlock()
	if scanned {
		return
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.scanned {
		return
	}
	fc.scanned = true

	for _, dir := range fc.dirs {
		fc.scanDirDepth(dir, 0)
	}
}

// maxFontScanDepth limits recursive directory traversal when scanning for fonts.
const maxFontScanDepth = 3

// maxFontFileSize limits the size of individual font files loaded into memory.
// CJK collections are large, hence the generous bound.
const maxFontFileSize = 40 << 20

func (fc *FontCache) scanDirDepth(dir string, depth int) {
	if depth > maxFontScanDepth {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			fc.scanDirDepth(filepath.Join(dir, entry.Name()), depth+1)
			continue
		}
		name := entry.Name()
		lower := strings.ToLower(name)
		isTTC := strings.HasSuffix(lower, ".ttc") || strings.HasSuffix(lower, ".otc")
		isSingle := strings.HasSuffix(lower, ".ttf") || strings.HasSuffix(lower, ".otf")
		if !isTTC && !isSingle {
			continue
		}

		info, err := entry.Info()
		if err != nil || info.Size() > maxFontFileSize {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}

		if isTTC {
			fc.loadCollection(data, lower)
		} else {
			fc.loadSingleFont(data, lower)
		}
	}
}

// loadSingleFont parses a single TTF/OTF font and registers it by both
// filename and internal family name.
func (fc *FontCache) loadSingleFont(data []byte, lowerFilename string) {
	f, err := opentype.Parse(data)
	if err != nil {
		return
	}
	baseName := strings.TrimSuffix(lowerFilename, filepath.Ext(lowerFilename))
	fc.fonts[baseName] = f
	fc.registerByFamilyName(f)
}

// loadCollection parses a TTC/OTC font collection and registers each font
// by its internal family name.
func (fc *FontCache) loadCollection(data []byte, lowerFilename string) {
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return
	}
	for i := 0; i < coll.NumFonts(); i++ {
		f, err := coll.Font(i)
		if err != nil {
			continue
		}
		if i == 0 {
			baseName := strings.TrimSuffix(lowerFilename, filepath.Ext(lowerFilename))
			fc.fonts[baseName] = f
		}
		fc.registerByFamilyName(f)
	}
}

// koreanFontAliases maps Korean font names, as users type them, to the
// family names fonts register under.
var koreanFontAliases = map[string]string{
	"프리텐다드":          "pretendard",
	"나눔고딕":           "nanumgothic",
	"나눔명조":           "nanummyeongjo",
	"맑은 고딕":          "malgun gothic",
	"본고딕":            "noto sans cjk kr",
	"애플 sd 산돌고딕 neo": "apple sd gothic neo",
}

// registerByFamilyName extracts the font family name from the font's name
// table and registers it in the cache.
func (fc *FontCache) registerByFamilyName(f *opentype.Font) {
	familyName, err := f.Name(nil, sfnt.NameIDFamily)
	if err == nil && familyName != "" {
		fc.fonts[strings.ToLower(familyName)] = f
	}
	fullName, err := f.Name(nil, sfnt.NameIDFull)
	if err == nil && fullName != "" {
		fc.fonts[strings.ToLower(fullName)] = f
	}
}

// systemFontDirs returns OS-specific font directories.
func systemFontDirs() []string {
	switch runtime.GOOS {
	case "windows":
		windir := os.Getenv("WINDIR")
		if windir == "" {
			windir = `C:\Windows`
		}
		dirs := []string{filepath.Join(windir, "Fonts")}
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			dirs = append(dirs, filepath.Join(localAppData, "Microsoft", "Windows", "Fonts"))
		}
		return dirs
	case "darwin":
		dirs := []string{"/System/Library/Fonts", "/Library/Fonts"}
		if home, _ := os.UserHomeDir(); home != "" {
			dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
		}
		return dirs
	default: // linux, freebsd, etc.
		dirs := []string{"/usr/share/fonts", "/usr/local/share/fonts"}
		if home, _ := os.UserHomeDir(); home != "" {
			dirs = append(dirs, filepath.Join(home, ".local", "share", "fonts"))
			dirs = append(dirs, filepath.Join(home, ".fonts"))
		}
		return dirs
	}
}
