/*
 * doc.go, part of gobalance.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package eqf reads and writes equation files: plain text files with one chemical
//equation per line, used for batch balancing.
//
//An equation file may start with a header. Each header line has the form
//
//	#key=value
//
//Other lines starting with '#', and blank lines, are ignored anywhere in the file.
//Every remaining line is one equation, and is returned as it is, minus surrounding
//whitespace.
//
//The file may be compressed. The compression is chosen from the extension of the
//file name: ".zst" is z-standard, ".gz" gzip, ".flate" raw deflate and ".lzw" LZW
//(MSB order, 8 bit literals). Any other extension means an uncompressed file.
package eqf
