package binding

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInterpolate(t *testing.T) {
	data := map[string]any{
		"host": "nas.local",
		"ports": []any{8989, 7878},
		"docker": map[string]any{"name": "portainer"},
	}
	cases := []struct {
		in   string
		want string
	}{
		{"http://${host}:8989", "http://nas.local:8989"},
		{"${ports[1]}", "7878"},
		{"${ docker.name }", "portainer"},
		{"${missing}", "${missing}"},
		{"${missing:-fallback}", "fallback"},
		{"${host:-ignored}", "nas.local"},
		{"plain", "plain"},
	}
	for _, c := range cases {
		if got := Interpolate(c.in, data); got != c.want {
			t.Fatalf("Interpolate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestInterpolateNilData(t *testing.T) {
	if got := Interpolate("${a:-x}-${b}", nil); got != "x-${b}" {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestExpandReportsMissing(t *testing.T) {
	data := map[string]string{"host": "h"}
	out, missing := Expand("${host} ${user} ${port} ${user} ${tls:-off}", data)
	if out != "h ${user} ${port} ${user} off" {
		t.Fatalf("unexpected output %q", out)
	}
	if diff := cmp.Diff([]string{"port", "user"}, missing); diff != "" {
		t.Fatalf("missing mismatch (-want +got):\n%s", diff)
	}
}
