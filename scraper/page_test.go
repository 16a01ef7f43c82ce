package scraper

import (
	"errors"
	"testing"
)

type fakeInstaller struct {
	installed  int
	removed    int
	installErr error
	removeErr  error
}

func (f *fakeInstaller) EvalOnNewDocument(string) (func() error, error) {
	if f.installErr != nil {
		return nil, f.installErr
	}
	f.installed++
	return func() error {
		f.removed++
		return f.removeErr
	}, nil
}

func TestInstallStealth(t *testing.T) {
	tests := []struct {
		name        string
		installErr  error
		removeErr   error
		wantInstall int
		wantRemove  int
	}{
		{"removed on cleanup", nil, nil, 1, 1},
		{"remove error is swallowed", nil, errors.New("target closed"), 1, 1},
		{"install failure yields no-op cleanup", errors.New("eval failed"), nil, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeInstaller{installErr: tt.installErr, removeErr: tt.removeErr}
			cleanup := installStealth(f)
			if f.removed != 0 {
				t.Fatalf("script removed before cleanup")
			}
			cleanup()
			if f.installed != tt.wantInstall || f.removed != tt.wantRemove {
				t.Errorf("installed=%d removed=%d, want %d/%d", f.installed, f.removed, tt.wantInstall, tt.wantRemove)
			}
		})
	}
}

func TestInstallStealth_ReuseDoesNotStack(t *testing.T) {
	f := &fakeInstaller{}
	for i := 0; i < 3; i++ {
		installStealth(f)()
	}
	if live := f.installed - f.removed; live != 0 {
		t.Errorf("%d stealth scripts still registered after 3 reuses", live)
	}
}
