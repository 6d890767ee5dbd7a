package progressbar

import (
	"bytes"
	"strings"
	"testing"
)

func TestManualProgressBar(t *testing.T) {
	var out bytes.Buffer
	p := NewManualProgressBar(&out, 10, 4)

	for i := 0; i < 3; i++ {
		p.Increment()
	}
	if p.Fraction() != 0.75 {
		t.Errorf("fraction: \n\twant(0.75) \n\thave(%v)", p.Fraction())
	}

	p.Display()
	line := out.String()
	if !strings.Contains(line, "|"+strings.Repeat("█", 7)+"   |") {
		t.Errorf("display: unexpected bar %q", line)
	}
	if !strings.Contains(line, "75.00%") || !strings.Contains(line, "3/4 steps") {
		t.Errorf("display: unexpected progress %q", line)
	}

	// Progress saturates at the maximum
	for i := 0; i < 10; i++ {
		p.Increment()
	}
	if p.Fraction() != 1 {
		t.Errorf("fraction: \n\twant(1) \n\thave(%v)", p.Fraction())
	}
	if !strings.Contains(p.String(), strings.Repeat("█", 10)) {
		t.Errorf("string: unexpected bar %q", p.String())
	}
}
