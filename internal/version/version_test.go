package version

import (
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	i := Version()
	if i.Go == "" || i.OS == "" || i.Arch == "" {
		t.Errorf("incomplete build information: %+v", i)
	}
	if !strings.Contains(i.String(), CmdName()) {
		t.Errorf("String() = %q doesn't contain the command name", i.String())
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.HasPrefix(ua, CmdName()+"/") {
		t.Errorf("UserAgent() = %q doesn't start with the command name", ua)
	}
	if !strings.Contains(ua, "https://") {
		t.Errorf("UserAgent() = %q doesn't link back to the project", ua)
	}
}
