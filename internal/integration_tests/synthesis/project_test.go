package synthesis

// standardProject is a two-page project with one library; both pages import
// the same package, which therefore lands in the common chunk.
func standardProject(manifest string) map[string]string {
	return map[string]string{
		"bundle.hcl":                manifest,
		"src/lib/a.js":              "export const a = 1;\n",
		"src/lib/b.js":              "import { a } from './a';\nexport const b = a;\n",
		"src/pages/home/index.html": "<!doctype html><html><body></body></html>\n",
		"src/pages/home/index.js":   "import c from 'c';\n",
		"src/pages/home/about.html": "<!doctype html><html><body></body></html>\n",
		"src/pages/home/about.js":   "import c from 'c';\nimport { a } from '../../lib/a';\n",
		"vendor/jquery.min.js":      "/* jquery */\n",
	}
}

const vendorManifest = `
libraries {
  vendor = ["lib/a.js", "lib/b.js"]
}
`
