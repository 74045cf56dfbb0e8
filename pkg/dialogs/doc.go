/*
Package dialogs provides the reusable sub-dialogs every skill composes:

  - Prompt: a retry-bounded question+validator pair. Validation failures
    re-ask with a "didn't understand" variant up to a per-prompt ceiling,
    then abort the containing flow.
  - Choice: the disambiguation/selection engine. It resolves the state's
    candidate list to exactly one candidate or "none", paginating long
    lists and accepting ordinal, name or paging answers.

Both are ordinary registered dialogs; skills reach them with Begin and
receive their results as the next step's input.
*/
package dialogs
