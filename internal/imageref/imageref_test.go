package imageref

import (
	"errors"
	"testing"

	"github.com/starford/perthro/internal/apperr"
)

func TestIsImage_ImgTag(t *testing.T) {
	n, err := ParseFragment(`<img src="images/photo.png">`)
	if err != nil {
		t.Fatal(err)
	}
	if !IsImage(n) {
		t.Error("plain <img> should be an image")
	}
}

func TestIsImage_ContainerClass(t *testing.T) {
	n, err := ParseFragment(`<div class="internal-embed image-embed" src="photo.png"></div>`)
	if err != nil {
		t.Fatal(err)
	}
	if !IsImage(n) {
		t.Error("image-embed container should be an image")
	}
}

func TestIsImage_DescendantImg(t *testing.T) {
	n, err := ParseFragment(`<span><a href="#"><img src="x.png"></a></span>`)
	if err != nil {
		t.Fatal(err)
	}
	if !IsImage(n) {
		t.Error("element with descendant <img> should be an image")
	}
}

func TestIsImage_NotAnImage(t *testing.T) {
	n, err := ParseFragment(`<p>just text</p>`)
	if err != nil {
		t.Fatal(err)
	}
	if IsImage(n) {
		t.Error("paragraph should not be an image")
	}
}

func TestExtract_SrcAttribute(t *testing.T) {
	n, err := ParseFragment(`<img src="images/photo.png" alt="a photo">`)
	if err != nil {
		t.Fatal(err)
	}
	ref, err := Extract(n)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if ref != "images/photo.png" {
		t.Errorf("ref = %q", ref)
	}
}

func TestExtract_FallbackOrder(t *testing.T) {
	// No src: alt is next in priority, then the data attributes.
	n, err := ParseFragment(`<img alt="images/photo.png" data-path="wrong.png">`)
	if err != nil {
		t.Fatal(err)
	}
	ref, err := Extract(n)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if ref != "images/photo.png" {
		t.Errorf("ref = %q, want the alt candidate", ref)
	}
}

func TestExtract_DataAttributes(t *testing.T) {
	cases := []struct {
		fragment string
		want     string
	}{
		{`<div class="image-embed" data-src="a.png"></div>`, "a.png"},
		{`<div class="image-embed" data-path="b/c.png"></div>`, "b/c.png"},
		{`<div class="image-embed" data-href="d.png"></div>`, "d.png"},
		{`<div class="image-embed" title="e.png"></div>`, "e.png"},
	}
	for _, c := range cases {
		n, err := ParseFragment(c.fragment)
		if err != nil {
			t.Fatal(err)
		}
		ref, err := Extract(n)
		if err != nil {
			t.Errorf("Extract(%q): %v", c.fragment, err)
			continue
		}
		if ref != c.want {
			t.Errorf("Extract(%q) = %q, want %q", c.fragment, ref, c.want)
		}
	}
}

func TestExtract_ContainerBeforeDescendant(t *testing.T) {
	// The container's own src wins over the rendered descendant's blob URL.
	n, err := ParseFragment(
		`<div class="image-embed" src="images/photo.png"><img src="blob:app://xyz"></div>`)
	if err != nil {
		t.Fatal(err)
	}
	ref, err := Extract(n)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if ref != "images/photo.png" {
		t.Errorf("ref = %q", ref)
	}
}

func TestExtract_EmbeddedImageCondition(t *testing.T) {
	n, err := ParseFragment(`<img src="data:image/png;base64,iVBORw0KGgo=">`)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Extract(n)
	if !errors.Is(err, apperr.ErrEmbeddedImage) {
		t.Errorf("err = %v, want ErrEmbeddedImage", err)
	}
}

func TestExtract_NetworkImageCondition(t *testing.T) {
	n, err := ParseFragment(`<img src="https://example.com/cat.png">`)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Extract(n)
	if !errors.Is(err, apperr.ErrNetworkImage) {
		t.Errorf("err = %v, want ErrNetworkImage", err)
	}
}

func TestExtract_NoCandidates(t *testing.T) {
	n, err := ParseFragment(`<img>`)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Extract(n)
	if !errors.Is(err, apperr.ErrNoReference) {
		t.Errorf("err = %v, want ErrNoReference", err)
	}
}

func TestParseFragment_Empty(t *testing.T) {
	_, err := ParseFragment("   ")
	if !errors.Is(err, apperr.ErrNoReference) {
		t.Errorf("err = %v, want ErrNoReference", err)
	}
}
