// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

//go:build integration

/*
To run these tests, specify `-tags=integration` when running `go test`.
*/
package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

// fixture is a gadget checkout in miniature.
var fixture = map[string]string{
	"i18n/en.json": `{
	"@metadata": {"authors": ["Example"]},
	"summary-ad": "Tagging for <nowiki>{{subst:afd}}</nowiki> nomination",
	"warn-title": "Warn <b>user</b><img src=x onerror=alert(1)>",
	"portlet-xfd": "XFD"
}`,
	"i18n/de.json": `{
	"summary-ad": "Markiere mit <nowiki>{{subst:afd}}</nowiki>",
	"warn-title": "Benutzer&nbsp;<i onclick=\"steal()\">warnen</i>",
	"portlet-xfd": "<a href=\" java\tscript:alert(1)\">LA</a>"
}`,
	"i18n/qqq.json":      `{"summary-ad": "Edit summary"}`,
	"src/mw-messages.ts": "// Generated by a script\nexport default [\n\t'blockedtext',\n\t'watchthis',\n];\n",
	"src/twinkle.ts":     "import msg from './messages';\nmsg('portlet-xfd');\nmsg(\"blockedtext\");\nmsg('watchthis');\n",
	"src/modules/xfd.ts": "msg('summary-ad', page);\nmsg('warn-title');\n",
}

func writeFixture(t *testing.T, root string) {
	t.Helper()

	for rel, content := range fixture {
		path := filepath.Join(root, rel)

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

func TestRunPipeline(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root)

	configPath := filepath.Join(root, "i18nguard.yaml")
	config := strings.NewReplacer("ROOT", root).Replace(`
catalog:
  sourceDir: ROOT/i18n
  outputDir: ROOT/build-i18n
  precompress: [gzip]
audit:
  sourceDirs: [ROOT/src, ROOT/src/modules]
  externalKeysFile: ROOT/src/mw-messages.ts
report:
  path: ROOT/build-i18n/report.yaml
`)

	if err := os.WriteFile(configPath, []byte(config), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("I18NGUARD_CONFIGFILE", configPath)

	if err := run(); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	en, err := os.ReadFile(filepath.Join(root, "build-i18n", "en.json"))
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(en), `{{subst:afd}}</" + String("") + "nowiki>`) {
		t.Errorf("closing nowiki not split in scaffold catalog:\n%s", en)
	}

	if strings.Contains(string(en), "onerror") || strings.Contains(string(en), "<img") {
		t.Errorf("unsafe markup in output:\n%s", en)
	}

	de, err := os.ReadFile(filepath.Join(root, "build-i18n", "de.json"))
	if err != nil {
		t.Fatal(err)
	}

	doc := gjson.ParseBytes(de)

	if got := doc.Get("warn-title").String(); got != "Benutzer <i>warnen</i>" {
		t.Errorf("warn-title = %q", got)
	}

	if doc.Get("portlet-xfd").Exists() {
		t.Error("script URL survived in portlet-xfd")
	}

	for _, name := range []string{"de.json.gz", "report.yaml"} {
		if _, err := os.Stat(filepath.Join(root, "build-i18n", name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	if _, err := os.Stat(filepath.Join(root, "build-i18n", "qqq.json")); !os.IsNotExist(err) {
		t.Error("documentation catalog must not be built")
	}
}
