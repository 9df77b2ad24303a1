package browser

// Page-side scripts. Each one is an expression evaluated in the page and
// always yields a JSON value, never undefined.

// modalSelector matches the dialogs the site uses for the application form,
// the discard confirmation and the post-submit notice.
const modalSelector = `[role="dialog"], [role="alertdialog"], .artdeco-modal, .jobs-easy-apply-modal`

const jsHelpers = `
const __aaVisible = (el) => {
  const r = el.getBoundingClientRect();
  const s = window.getComputedStyle(el);
  return r.width > 0 && r.height > 0 && s.visibility !== 'hidden' && s.display !== 'none';
};
const __aaModals = () => Array.from(document.querySelectorAll(` + "`" + modalSelector + "`" + `)).filter(__aaVisible);
`

// jsCollectControls tags every interactive element with a fresh data-aa-ref
// and returns their descriptors in DOM order.
const jsCollectControls = `(() => {` + jsHelpers + `
  const gen = (window.__aaGen = (window.__aaGen || 0) + 1);
  const modals = __aaModals();
  const sel = 'button, a, input[type="button"], input[type="submit"], [role="button"], [role="alert"], [role="status"], .artdeco-inline-feedback';
  const out = [];
  document.querySelectorAll(sel).forEach((el, i) => {
    const ref = gen + '-' + i;
    el.setAttribute('data-aa-ref', ref);
    const r = el.getBoundingClientRect();
    out.push({
      ref: ref,
      text: (el.innerText || el.textContent || '').trim().slice(0, 300),
      label: el.getAttribute('aria-label') || '',
      title: el.getAttribute('title') || '',
      value: el.getAttribute('value') || '',
      href: el.tagName === 'A' ? (el.href || '') : '',
      disabled: !!el.disabled || el.getAttribute('aria-disabled') === 'true',
      visible: __aaVisible(el),
      inModal: modals.some((m) => m.contains(el)),
      x: r.left + r.width / 2,
      y: r.top + r.height / 2,
    });
  });
  return out;
})()`

const jsHasOpenModal = `(() => {` + jsHelpers + `
  return __aaModals().length > 0;
})()`

const jsHasEmptyFreeText = `(() => {` + jsHelpers + `
  const modals = __aaModals();
  const root = modals.length ? modals[modals.length - 1] : document;
  const free = ['', 'text', 'email', 'tel', 'number', 'url'];
  return Array.from(root.querySelectorAll('input, textarea')).some((el) => {
    const type = (el.getAttribute('type') || '').toLowerCase();
    if (el.tagName === 'INPUT' && !free.includes(type)) return false;
    const hint = [el.getAttribute('role'), el.getAttribute('aria-label'), el.getAttribute('placeholder'), el.name, el.id]
      .join(' ').toLowerCase();
    if (el.getAttribute('role') === 'combobox' || hint.includes('search') || hint.includes('pesquis')) return false;
    if (el.disabled || el.readOnly || !__aaVisible(el)) return false;
    return String(el.value || '').trim() === '';
  });
})()`

const jsHasInteractiveForm = `(() => {` + jsHelpers + `
  return __aaModals().some((m) =>
    Array.from(m.querySelectorAll('input, select, textarea, button[type="submit"], footer button')).some(__aaVisible));
})()`

// jsClickRef dispatches a synthetic click on the tagged element.
const jsClickRef = `((ref) => {
  const el = document.querySelector('[data-aa-ref="' + ref + '"]');
  if (!el) return false;
  el.dispatchEvent(new MouseEvent('click', { bubbles: true, cancelable: true, view: window }));
  return true;
})(%q)`

// jsRectRef returns the current center of the tagged element, or null.
const jsRectRef = `((ref) => {
  const el = document.querySelector('[data-aa-ref="' + ref + '"]');
  if (!el) return null;
  el.scrollIntoView({ block: 'center' });
  const r = el.getBoundingClientRect();
  return { x: r.left + r.width / 2, y: r.top + r.height / 2 };
})(%q)`

const jsExists = `((sel) => { try { return !!document.querySelector(sel); } catch (e) { return false; } })(%q)`

const jsBodyText = `document.body ? document.body.innerText : ''`

// jsScrollStep scrolls the window and any results list container by one step.
const jsScrollStep = `((step) => {
  window.scrollBy(0, step);
  document.querySelectorAll('.jobs-search-results-list, .scaffold-layout__list, [class*="results-list"]')
    .forEach((el) => { el.scrollTop += step; });
  return true;
})(%d)`

// jsCollectPostings takes a JSON array of selectors.
const jsCollectPostings = `((sels) => {
  const seen = new Set();
  const out = [];
  const pick = (root, q) => {
    if (!root) return '';
    const el = root.querySelector(q);
    return el ? (el.innerText || el.textContent || '').trim() : '';
  };
  document.querySelectorAll(sels.join(', ')).forEach((a) => {
    const href = a.href;
    if (!href || seen.has(href)) return;
    seen.add(href);
    const card = a.closest('li, .job-card-container, .base-card, .job-search-card');
    const text = (a.innerText || a.getAttribute('aria-label') || '').trim().split('\n')[0];
    out.push({
      href: href,
      text: text,
      context: pick(card, '.job-card-container__primary-description, .artdeco-entity-lockup__subtitle, .base-search-card__subtitle, .job-card-container__company-name, h4'),
    });
  });
  return out;
})(%s)`
