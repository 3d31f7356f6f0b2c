// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat implements the conversation screen of the Ava TUI.

The Model owns the transcript viewport, the input line, and the streaming
pipeline for one conversation at a time. A turn flows through four stages:

 1. The user submits a line; the request goes to the backend on a
    goroutine with a cancel function registered in the cancel manager.
 2. The opening chunk delivers the grounding sources (StreamMetaMsg); the
    citation extractor is reset against them.
 3. Token chunks feed the reveal scheduler, which paces them out as
    RevealTickMsg updates. Each tick re-renders the revealed prefix
    through the extractor so citations light up as they complete.
 4. StreamCompleteMsg (or StreamErrorMsg) finalizes the message, records
    citations in the history index, and autosaves the conversation.

Messages cross goroutines through the package-level program reference set
by SetProgram; everything else mutates only inside Update.

Losing terminal focus or suspending the process pauses the reveal without
pausing the network read; the buffered remainder plays out on return.
*/
package chat
