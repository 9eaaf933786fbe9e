package main

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"imagemill/internal/testsupport"
)

func TestConvertExportsDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WritePNG(t, filepath.Join(env.sourceDir, "alpha.png"), 8, 6, color.NRGBA{R: 200, A: 255})
	testsupport.WritePNG(t, filepath.Join(env.sourceDir, "beta.png"), 4, 4, color.NRGBA{G: 140, A: 255})

	out, _, err := runCLI(t, env.configPath, "convert", env.sourceDir)
	if err != nil {
		t.Fatalf("convert: %v\noutput:\n%s", err, out)
	}
	requireContains(t, out, "alpha.jpg")
	requireContains(t, out, "beta.jpg")
	requireContains(t, out, "completed")
	requireContains(t, out, "Exported 2 images to "+env.cfg.Paths.OutputDir)
	requireContains(t, out, "Converted 2 of 2 images")

	for _, name := range []string{"alpha.jpg", "beta.jpg"} {
		if _, err := os.Stat(filepath.Join(env.cfg.Paths.OutputDir, name)); err != nil {
			t.Fatalf("expected exported file %s: %v", name, err)
		}
	}
}

func TestConvertZipBundlesOutputs(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WritePNG(t, filepath.Join(env.sourceDir, "holiday.png"), 8, 8, color.NRGBA{B: 90, A: 255})

	out, _, err := runCLI(t, env.configPath, "convert", "--zip", env.sourceDir)
	if err != nil {
		t.Fatalf("convert --zip: %v\noutput:\n%s", err, out)
	}
	archive := filepath.Join(env.cfg.Paths.OutputDir, env.cfg.Export.ZipName)
	requireContains(t, out, "Archived 1 images to "+archive)
	if _, err := os.Stat(archive); err != nil {
		t.Fatalf("expected archive at %s: %v", archive, err)
	}
}

func TestConvertReportsFailures(t *testing.T) {
	env := setupCLITestEnv(t)
	header := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	broken := append(append([]byte{}, header...), bytes.Repeat([]byte{0x11}, 64)...)
	if err := os.WriteFile(filepath.Join(env.sourceDir, "broken.png"), broken, 0o644); err != nil {
		t.Fatalf("write broken source: %v", err)
	}
	testsupport.WritePNG(t, filepath.Join(env.sourceDir, "fine.png"), 4, 4, color.NRGBA{R: 20, A: 255})

	out, _, err := runCLI(t, env.configPath, "convert", env.sourceDir)
	if err == nil {
		t.Fatalf("expected failure exit, output:\n%s", out)
	}
	requireContains(t, err.Error(), "1 of 2 conversions failed")
	requireContains(t, out, "failed")
	requireContains(t, out, "broken.png")

	if _, err := os.Stat(filepath.Join(env.cfg.Paths.OutputDir, "fine.jpg")); err != nil {
		t.Fatalf("expected surviving export fine.jpg: %v", err)
	}
}

func TestConvertRejectsUnsupportedFile(t *testing.T) {
	env := setupCLITestEnv(t)
	notes := filepath.Join(env.sourceDir, "notes.txt")
	if err := os.WriteFile(notes, []byte("plain text"), 0o644); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	out, _, err := runCLI(t, env.configPath, "convert", notes)
	if err == nil {
		t.Fatalf("expected error, output:\n%s", out)
	}
	requireContains(t, err.Error(), "no supported images found")
	requireContains(t, out, "Skipped "+notes)
}

func TestConvertAppliesRenameAndSequence(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WritePNG(t, filepath.Join(env.sourceDir, "a.png"), 4, 4, color.NRGBA{R: 10, A: 255})
	testsupport.WritePNG(t, filepath.Join(env.sourceDir, "b.png"), 4, 4, color.NRGBA{G: 10, A: 255})

	out, _, err := runCLI(t, env.configPath, "convert", "--base-name", "vacation", "--sequence", env.sourceDir)
	if err != nil {
		t.Fatalf("convert: %v\noutput:\n%s", err, out)
	}
	requireContains(t, out, "vacation_1.jpg")
	requireContains(t, out, "vacation_2.jpg")
}

func TestConvertScaleFlagResizes(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WritePNG(t, filepath.Join(env.sourceDir, "big.png"), 8, 6, color.NRGBA{B: 40, A: 255})

	out, _, err := runCLI(t, env.configPath, "convert", "--scale", "0.5", env.sourceDir)
	if err != nil {
		t.Fatalf("convert: %v\noutput:\n%s", err, out)
	}
	requireContains(t, out, "4x3")
}

func TestConvertWidthFlagImpliesPixelMode(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WritePNG(t, filepath.Join(env.sourceDir, "wide.png"), 8, 4, color.NRGBA{R: 77, A: 255})

	out, _, err := runCLI(t, env.configPath, "convert", "--width", "4", env.sourceDir)
	if err != nil {
		t.Fatalf("convert: %v\noutput:\n%s", err, out)
	}
	requireContains(t, out, "4x2")
}

func TestConvertFormatFlagOverridesConfig(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WritePNG(t, filepath.Join(env.sourceDir, "shot.png"), 4, 4, color.NRGBA{R: 5, A: 255})

	out, _, err := runCLI(t, env.configPath, "convert", "--format", "webp", env.sourceDir)
	if err != nil {
		t.Fatalf("convert: %v\noutput:\n%s", err, out)
	}
	requireContains(t, out, "shot.webp")
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.OutputDir, "shot.webp")); err != nil {
		t.Fatalf("expected exported file shot.webp: %v", err)
	}
}
