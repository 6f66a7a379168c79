// Package job runs batches of page captures described by a YAML file:
//
//	output_dir: shots
//	format: png
//	size: 1280x800
//	pages:
//	  - name: Home
//	    url: https://example.com
//	  - name: Checkout mobile
//	    url: https://example.com/checkout
//	    size: 390x844
//	    cookies: ["session=abc; path=/"]
//	    scripts: ["document.querySelector('.banner').remove()"]
//
// Each page is resized, loaded, given its cookies and scripts, captured full
// page and written to OutputDir under a name derived from the page name.
package job
