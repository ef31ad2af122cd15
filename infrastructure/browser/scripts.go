package browser

// domWalkScript returns the raw node tree under <body>. A node that throws
// while being read is returned as {tag, error} without children.
const domWalkScript = `
() => {
	const SKIP = new Set(['SCRIPT', 'STYLE', 'NOSCRIPT', 'TEMPLATE']);
	const CLICKABLE_CLASSES = ['clickable', 'btn', 'button', 'card', 'Card'];

	const collapse = (s) => (s || '').replace(/\s+/g, ' ').trim();

	const isClickable = (el, attrs) => {
		if (el.onclick || 'onclick' in attrs) return true;
		if (attrs.role === 'button' || attrs['data-testid']) return true;
		if ('tabindex' in attrs) return true;
		const cls = attrs['class'] || '';
		if (CLICKABLE_CLASSES.some((c) => cls.includes(c))) return true;
		try {
			return window.getComputedStyle(el).cursor === 'pointer';
		} catch (e) {
			return false;
		}
	};

	const walk = (el) => {
		let tag = '';
		try {
			tag = el.tagName.toLowerCase();
			const attrs = {};
			for (const a of el.attributes) {
				attrs[a.name] = a.value;
			}

			let direct = '';
			for (const child of el.childNodes) {
				if (child.nodeType === Node.TEXT_NODE) {
					direct += child.textContent + ' ';
				}
			}

			const children = [];
			for (const child of el.children) {
				if (SKIP.has(child.tagName)) continue;
				children.push(walk(child));
			}

			return {
				tag,
				attrs,
				directText: collapse(direct),
				fullText: collapse(el.innerText !== undefined ? el.innerText : el.textContent),
				clickable: isClickable(el, attrs),
				children,
			};
		} catch (e) {
			return { tag, attrs: {}, children: [], error: String(e && e.message ? e.message : e) };
		}
	};

	if (!document.body) return null;
	return walk(document.body);
}
`

// interactableScript mirrors what a user can act on: enabled and laid out
const interactableScript = `el => !el.disabled && el.offsetParent !== null`

const hiddenScript = `el => el.offsetParent === null`

const submitFormScript = `form => form.submit()`
